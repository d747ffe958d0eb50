// Package stats implements the per-frame metric cache shared by the scene
// detectors.
//
// The cache is a sparse table keyed by (frame index, metric name). Detectors
// register the metric names they own at configuration time, write raw scores
// during a scan, and read previously stored values to skip frame decoding on
// subsequent runs. The table round-trips through a CSV record format so a
// cache can survive process restarts.
package stats
