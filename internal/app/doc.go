// Package app is the composition root for both togetter binaries.
//
// RunDevice wires the device side:
//
//	config.Load ──> session.Session ──> transport.Client (Sender)
//	                      ^                    │
//	                      │ InboundMsg         │ websocket /sync
//	ui.Model <── tea.Program <─────────────────┘
//	   │              ^
//	   │ Reset        │ ResyncMsg
//	   └──> resync.Driver
//
// Every session transition runs on the Bubble Tea goroutine; the transport
// and the resync driver only post messages into the program.
//
// RunHost wires the companion host: a list source (TOML file or the web API),
// the host.Host state machine, its HTTP server, and the loop that pushes
// source changes to devices (fsnotify for files, a cron schedule for the API).
//
// Configuration errors and a failed listen are returned. Source failures after
// startup are logged and the host keeps serving its last snapshot.
package app
