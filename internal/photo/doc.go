// Package photo defines the value types shared by the search client, the
// pagination stream and the layout engine.
//
// # Overview
//
// A search result is an Item: an identity, a title, an owner and a set of
// Candidate sizes. Candidates are the concrete renditions the remote API
// offers (thumbnail, small, medium, ...), each with a source URL and pixel
// dimensions. Items are immutable once the search client has produced them,
// and their Sizes are always sorted ascending by area.
//
// A Page is one batch of items plus the pagination counters reported by the
// remote API. Size is a width/height pair in pixels used by the row packer;
// a Size whose width is not a positive finite number is "unknown".
package photo
