// Package host is the companion side of the sync protocol.
//
// A Host reads a group of lists from a Source, packs either the group
// overview or one list into a snapshot message and pushes it to every attached
// device. Selections coming back from devices open lists, return to the group,
// toggle items in the source or request a resend.
//
// Pushes are deduplicated against the last message; a resync request always
// answers the requesting device even when nothing changed. Labels and names
// pass through CleanValue before packing, so devices only ever see short,
// diacritic-free text.
//
// Server puts a Host behind HTTP: /sync upgrades to a websocket carrying one
// message per binary frame, /snapshot returns the last message as
// application/cbor and /healthz reports liveness.
package host
