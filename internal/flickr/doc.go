// Package flickr provides the search client for a Flickr-style REST API.
//
// # Overview
//
// The package is split into a transport and a translator:
//
//   - Caller is the single transport capability: call a named REST method
//     with url.Values and get the raw JSON body back.
//   - Client issues flickr.photos.search through a Caller and normalizes the
//     response into photo.Page values.
//
// # Transport
//
// HTTPCaller performs GET requests against the configured endpoint, adding
// format=json, nojsoncallback=1 and the API key to every call. All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json
//   - Include a skylight/<version> User-Agent
//   - Return *TransportError for network failures and HTTP status >= 400
//
// CachingCaller decorates any Caller with a Redis cache keyed by method and
// sorted parameters (the API key is never part of the key). Only responses
// with stat "ok" are stored. A Redis outage degrades to uncached calls.
//
// # Normalization
//
// Search results carry optional url_<s>, width_<s> and height_<s> fields for
// the suffixes t, n, m, z, c, l and o. Every present triple with positive
// dimensions becomes a photo.Candidate; candidates are sorted ascending by
// area. Dimensions arrive as numbers or numeric strings depending on the API
// version, and both are accepted.
//
// # Error Handling
//
//   - *TransportError: connection refused, timeout, HTTP error status, or a
//     body that cannot be decoded
//   - *RemoteAPIError: a well-formed response whose stat is not "ok"
//
// Neither is retried here. Retrying is the caller's decision.
//
// # Metrics
//
//   - skylight_api_calls_total{method,outcome}
//   - skylight_api_call_duration_seconds{method}
//   - skylight_cache_lookups_total{result}
package flickr
