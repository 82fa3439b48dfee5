// Package ui implements the terminal gallery with Bubble Tea.
//
// The screen has four parts: a status header, the search box, the gallery
// viewport and a key-hint footer. Edits in the search box go to the fetch
// controller's debounced SetQuery; enter applies the query immediately.
//
// The gallery is rendered from the shared state.Store. A command blocks on
// Store.Changed and turns each notification into a snapshot message, so the
// UI never reads controller state directly. Each snapshot is arranged with
// layout.Arrange at the terminal width expressed in pixels (columns times the
// configured cell width), then mapped back onto cells. Justified rows are
// distributed with carried rounding error so they fill the width exactly.
//
// Window resizes are debounced with a tagged tea.Tick: only the newest tick
// applies. When fewer lines than the load threshold remain below the
// viewport, the model asks the controller for another page.
package ui
