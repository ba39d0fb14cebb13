// Package model provides the intermediate representation (IR) shared by the
// reading-order pipeline and its adapters.
//
// Raw OCR output enters as [Detection] records, either parsed from a backend
// response by the ingest package or produced directly by the ocr package.
// The normalizer turns each detection into an immutable [Element]:
//
//	elem, err := model.NewElement(0, "天", 0.98, []float64{490, 0, 510, 0, 510, 20, 490, 20})
//	if errors.Is(err, model.ErrInvalidGeometry) {
//	    // drop this detection, keep the rest of the page
//	}
//
// [NormalizeAll] does the same for a whole page, logging and skipping
// malformed detections.
//
// # Geometry
//
// Coordinates follow the image convention used by OCR engines: the origin is
// the top-left corner and Y grows downward.
//
//   - [Point] - 2D point with distance calculation
//   - [BBox] - axis-aligned box with union, intersection and containment
//
// # Documents
//
// A [Document] groups the detections of a multi-page backend response into
// [Page] values so each page can be ordered independently.
//
// # Results
//
// [Result] is the serializable shape of a finished reading sequence, used by
// the CLI, the HTTP server and the job store.
package model
