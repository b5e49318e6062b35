package nearshare

import "errors"

var (
	// ErrParse is returned when an inbound message's correlation prefix or
	// ValueSet body cannot be decoded.
	ErrParse = errors.New("nearshare: malformed message")

	// ErrProtocolViolation is returned for a control message unexpected in
	// the application's current state, or a FetchDataResponse whose blob
	// falls outside the transfer's declared bounds.
	ErrProtocolViolation = errors.New("nearshare: protocol violation")

	// ErrNotImplemented is returned for a StartRequest naming more than one
	// file, or an unrecognized DataKind.
	ErrNotImplemented = errors.New("nearshare: not implemented")

	// ErrTransferCancelled is returned when the platform handler cancels a
	// file transfer token instead of accepting it.
	ErrTransferCancelled = errors.New("nearshare: transfer cancelled")
)
