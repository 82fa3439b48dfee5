// Package layout turns an ordered list of photos into justified rows.
//
// # Overview
//
// Two pure functions do the work:
//
//   - SelectBestSize picks, from an item's candidate renditions, the smallest
//     one that still covers a bounding box at the device scale factor. When
//     nothing is big enough the largest candidate wins.
//   - PackRows walks items in order, accumulating aspect ratios until the next
//     item would push the row past rowWidth/targetRowHeight. Full rows are
//     scaled to exactly rowWidth; the trailing row keeps the target height.
//
// Arrange combines both for a list of photo.Item values: it selects a
// thumbnail per item against the row box, packs the thumbnails, and selects a
// full-size rendition against the viewport for detail views.
//
// # Unknown Width
//
// Until the host has measured a real width (zero, negative, NaN or infinite),
// packing is skipped: every item is returned at its natural size inside one
// unjustified row.
//
// # Determinism
//
// Both functions are side-effect free. Calling them twice with the same input
// yields identical output, so hosts recompute the layout from scratch on every
// width change or new page instead of tracking row identity.
package layout
