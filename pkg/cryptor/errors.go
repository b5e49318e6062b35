package cryptor

import "errors"

// Cryptor errors.
var (
	// ErrIntegrity is returned when the HMAC over an inbound frame does not
	// verify.
	ErrIntegrity = errors.New("cryptor: integrity check failed")

	// ErrInvalidSecret is returned when the ECDH shared secret is not the
	// expected 32 bytes.
	ErrInvalidSecret = errors.New("cryptor: invalid shared secret length")

	// ErrShortCiphertext is returned when a ciphertext is shorter than one
	// AES block or not block-aligned.
	ErrShortCiphertext = errors.New("cryptor: ciphertext too short or misaligned")

	// ErrShortFrame is returned when a frame is too short to contain a
	// trailing HMAC tag, or when the bytes after the header are not exactly
	// PayloadSize plus the HMAC tag.
	ErrShortFrame = errors.New("cryptor: frame too short to contain HMAC tag")
)
