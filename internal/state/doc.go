// Package state tracks the device's connection to the host.
//
// The transport writes to a Store from its own goroutine (Connected,
// Disconnected, Failed, Received) while the UI reads Snapshot copies on every
// render. Snapshot copies the last error so callers can hold it without
// racing later updates.
//
// A link is reported offline once two consecutive dials have failed; a single
// dropped connection that redials at once is shown as reconnecting instead.
package state
