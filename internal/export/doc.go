// Package export writes scene lists in formats downstream tools consume.
//
// Two formats are supported: a CSV table mirroring the columns video
// editors expect (frame numbers, wall-clock timecodes, and lengths), and a
// CMX 3600 EDL whose events splice the detected scenes back to back.
package export
