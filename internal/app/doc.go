// Package app is the composition root for the skylight gallery.
//
// Run loads configuration, builds the logger, the search clients (with the
// optional Redis response cache), the fetch controller and the shared
// state.Store, starts the connectivity prober, and hands control to the UI.
//
//	Run()
//	  ├─> config.Load()
//	  ├─> NewLogger()          file logger, the TUI owns the terminal
//	  ├─> NewServices()        HTTP caller, cache, clients
//	  ├─> fetch.New()          OnChange -> store.Apply
//	  ├─> StartProber()        store.RecordProbe -> controller.SetOnline
//	  └─> ui.Run()             blocks
//
// The prober pings the API through the uncached client. Failed probes back
// off exponentially up to 30 seconds; two consecutive failures mark the API
// offline, which holds further fetches until a probe succeeds. A remote
// error response still counts as reachable.
//
// NewServices and NewLogger are shared with the headless search and serve
// commands.
package app
