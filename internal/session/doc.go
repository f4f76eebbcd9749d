// Package session applies user actions and host snapshots to the device's
// checklist.
//
// # Overview
//
// A Session owns the list header, the list store, the wire format and the
// variant behavior of one device. The presentation layer queries rows through
// it and forwards input events to it; the channel hands it inbound messages.
// Everything runs on the caller's goroutine and completes before returning.
//
// # Transitions
//
//	Activate(row)       uncollected -> collected, emit row, hint FocusNext
//	                    collected   -> uncollected, emit row
//	                    status 0 with ActivateSkipZero: nothing
//	                    status 0 with ActivateSelectZero: emit row only
//	LongActivate(row)   no state change, emit -1 or LongPressValue(row)
//	Tick()              emit -2
//	Receive(msg)        replace header/list, Reload, FocusFirst on a new list
//
// The placeholder row of an empty list and rows outside the list ignore
// activation.
//
// # Failure policy
//
// A message that fails to decode is logged and dropped; the previous list
// stays. A send that fails is logged and dropped; nothing is buffered and the
// next tick or user action talks to the host again.
package session
