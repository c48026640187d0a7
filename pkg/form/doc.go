// Package form holds the submission state machine behind a mounted login form.
//
// A Model records the values typed into each field and tracks the outcome of
// the last submission as one of four statuses:
//
//	idle --Submit--> pending --gateway ok--> succeeded
//	                         --gateway err--> failed
//	succeeded|failed --SetField--> idle
//
// While pending, further calls to Submit return the in-flight Submission
// instead of starting another gateway call. Gateway failures never escape the
// Model: they are surfaced as the failed status and its message so a display
// layer always has something to render.
package form
