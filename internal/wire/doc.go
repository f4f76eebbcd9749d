// Package wire encodes and decodes the messages exchanged between the device
// and its host.
//
// # Envelope
//
// Every message is a single CBOR map keyed by small integers:
//
//	0  header   text   inbound, optional
//	1  items    bytes  inbound, optional
//	2  select   int    outbound, required
//
// Inbound messages carry a full snapshot; there is no delta form. Outbound
// messages carry exactly one select value: a row index, SelectLongPress (-1),
// SelectResync (-2), or LongPressValue(row) (-3 and below).
//
// # Items layouts
//
// Two incompatible layouts exist and the caller picks one with Format:
//
//	packed:  count | count × {offset, status} | string table
//	inline:  count | count × {collected, amount, name_len, name}
//
// Packed decoding keeps the string table as a view of the payload and only
// checks bounds. Inline decoding copies each name into a fresh table.
//
// Any bounds failure returns an error wrapping ErrMalformedMessage. Decoding
// never mutates existing state.
package wire
