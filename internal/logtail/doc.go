// Package logtail reads the last lines of the device log for the UI's log
// view. It reads backwards from the end of the file so the cost does not grow
// with the size of the log.
package logtail
