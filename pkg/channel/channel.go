// Package channel implements the CDP channel multiplexing layer: one
// session-local instance of an application, addressed by a monotonically
// allocated ChannelId (spec.md §4.5).
package channel

import "github.com/cdpnear/nearshare/pkg/wire"

// WriteFunc sends an encrypted (or, pre-Established, plaintext) frame on
// behalf of a channel. Channels capture a WriteFunc at construction rather
// than holding a pointer back to their owning session, breaking the
// session<->channel<->application ownership cycle (spec.md §9 design note).
type WriteFunc func(header *wire.CommonHeader, body []byte) error

// CloseFunc tears down whatever owns a channel. A Near Share channel is the
// only application instance its session ever hosts, so closing it disposes
// the session (spec.md §9: single-shot sessions).
type CloseFunc func() error

// Application is the channel-level message handler contract every app
// (e.g. the Near Share receiver) implements.
type Application interface {
	HandleMessage(ch *Channel, header *wire.CommonHeader, body []byte) error
}

// Channel is one multiplexed application instance inside a session.
type Channel struct {
	ID    uint64
	App   Application
	write WriteFunc
	close CloseFunc
}

// New constructs a Channel bound to id, app, a write-back callback, and an
// optional close callback.
func New(id uint64, app Application, write WriteFunc, closeFn CloseFunc) *Channel {
	return &Channel{ID: id, App: app, write: write, close: closeFn}
}

// Write stamps header.ChannelID and sends body through the channel's
// write-back callback.
func (c *Channel) Write(header *wire.CommonHeader, body []byte) error {
	header.ChannelID = c.ID
	return c.write(header, body)
}

// Dispatch hands an assembled message to the channel's application.
func (c *Channel) Dispatch(header *wire.CommonHeader, body []byte) error {
	return c.App.HandleMessage(c, header, body)
}

// Close invokes the channel's close callback, if any. An application calls
// this once it has finished its work (spec.md §4.7: "close the channel and
// session").
func (c *Channel) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}
