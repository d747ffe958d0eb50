// Package video defines the frame source contract consumed by the scene
// manager, plus an image sequence implementation for footage extracted to
// still frames.
//
// Decoding and seeking real container formats is delegated to external
// tooling; the scanner only needs ordered frames and a frame rate.
package video
