package channel

import "errors"

// Channel dispatch errors.
var (
	// ErrUnknownApp is returned when StartChannelRequest names an app id
	// with no registered factory.
	ErrUnknownApp = errors.New("channel: unknown application id")

	// ErrUnknownChannel is returned when a Session-type message's
	// ChannelId does not match any open channel.
	ErrUnknownChannel = errors.New("channel: unknown channel id")
)
