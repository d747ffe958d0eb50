// Package scene turns detector events into scene interval lists.
//
// Manager drives a frame source through the registered detectors, collects
// the resulting event log, and derives deduplicated cut lists and fully
// formed scene lists under a configurable merge and shift policy. List is
// the pure interval algebra applied to an already built scene list:
// dropping short scenes, merging them into neighbours, and contracting
// boundaries.
//
// Throughout the package, when two candidates are equally near, the
// earlier one wins.
package scene
