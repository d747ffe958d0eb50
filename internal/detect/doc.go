// Package detect implements the scene boundary detectors.
//
// A Detector consumes decoded frames in strictly increasing time order and
// emits boundary events: instantaneous cuts, fade-ins, and fade-outs. Three
// strategies are provided:
//
//   - ContentDetector: HSV colour difference between adjacent frames against
//     a fixed threshold (fast cuts).
//   - ThresholdDetector: mean pixel intensity against a fixed level
//     (fade in/out).
//   - AdaptiveDetector: ContentDetector scores normalized against a rolling
//     window of neighbouring scores (cuts under camera motion).
//
// Detectors read and write the per-frame metric cache in package stats so a
// warm cache lets the frame source skip decoding entirely.
package detect
