// Package transport carries opaque messages between the device and the
// companion host over a websocket.
//
// Delivery is at-most-once. Send never buffers: when the socket is down the
// caller gets ErrChannelUnavailable and the message is gone. Run owns the
// connection lifecycle and redials with capped exponential backoff.
package transport
