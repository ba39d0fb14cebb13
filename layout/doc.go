// Package layout reconstructs the reading order of OCR output for historical
// documents written in vertical columns read right-to-left.
//
// The pipeline turns an unordered bag of detections into a [ReadingSequence]:
//
//  1. normalization (see the model package) into immutable elements
//  2. column clustering on element center X with a [ClusteringStrategy]
//  3. column ordering, rightmost column first ([OrderColumns])
//  4. line ordering, top to bottom inside each column ([OrderLines])
//  5. assembly of full text and per-column structure ([Assemble])
//  6. confidence aggregation ([AverageConfidence], [ComputeStats])
//
// The [ReadingOrderDetector] runs all stages:
//
//	detector := layout.NewReadingOrderDetector()
//	seq, err := detector.Detect(detections)
//	fmt.Println(seq.FullText())
//
// # Clustering strategies
//
// Two interchangeable strategies group elements into columns:
//
//   - [Sequential] - single pass over elements sorted by X with a running
//     column mean and a fixed threshold (default 50)
//   - [DensityBased] - 1-D DBSCAN over center X (default eps 120) with
//     deterministic reassignment of noise points to the nearest column
//
// Word-level backends (Azure Document Intelligence, PaddleOCR) work best
// with [DensityBased]; coarser line-level detections tolerate [Sequential].
//
//	config := layout.DefaultReadingOrderConfig()
//	config.Strategy = layout.Sequential{Threshold: 40}
//	detector := layout.NewReadingOrderDetectorWithConfig(config)
//
// # Determinism
//
// Every stage breaks ties on geometry first and on the original input index
// last, so running the detector twice on the same input in the same order
// yields identical output.
//
// The detector holds no mutable state; a single instance may be shared by
// any number of goroutines.
package layout
