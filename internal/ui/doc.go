// Package ui renders the device checklist in the terminal with Bubble Tea.
//
// The model owns nothing but the cursor and presentation state; rows, header
// and every transition live in a session.Session. Host messages and resync
// ticks arrive as InboundMsg and ResyncMsg through tea.Program.Send, so the
// session is only ever touched from the Bubble Tea goroutine.
//
// Keys mirror the watch buttons: up/down move, enter is a short press and l
// is a long press. v swaps the list for the tail of the device log, and the
// footer reports the host link from a state.Store.
package ui
