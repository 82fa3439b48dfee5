// Package state provides thread-safe state sharing between the fetch
// controller, the connectivity probe and the UI.
//
// # Overview
//
// The fetch controller publishes a fetch.View after every state change from
// whichever goroutine settled the change. The connectivity probe records its
// results on a ticker. The UI renders from a single Snapshot. Store is the
// point where these three meet.
//
// # Architecture
//
//	Producers:                          Consumer (UI):
//	┌────────────────────┐             ┌──────────────────┐
//	│ Controller.OnChange│──Apply()───→│                  │
//	│ (fetch goroutines) │             │ <-Changed()      │
//	└────────────────────┘   (mutex)   │ Snapshot()       │
//	┌────────────────────┐             │ render           │
//	│ probe ticker       │─RecordProbe→│                  │
//	└────────────────────┘             └──────────────────┘
//
// # Ordering
//
// Views carry a sequence number assigned under the controller lock. Because
// OnChange runs outside that lock, two views can be delivered out of order;
// Apply keeps the newest and drops older ones.
//
// # Notifications
//
// Changed returns a channel with a buffer of one. Every update attempts a
// non-blocking send, so bursts collapse into a single wake-up and producers
// never block on a slow UI. The reader always pulls the full Snapshot.
//
// # Defensive Copying
//
// Apply and Snapshot copy the item slice; errors are re-wrapped so callers
// never share an error value with the store. Items themselves are immutable
// once produced by the search client, so a shallow slice copy is enough.
//
// # Offline Detection
//
// ConsecutiveFailures counts failed probes; IsOffline reports true from the
// second consecutive failure onward. A single success resets the count.
//
// The zero Store is ready to use.
package state
