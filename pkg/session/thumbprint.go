package session

import "github.com/cdpnear/nearshare/pkg/crypto"

// thumbprintInfo is the HKDF "info" parameter used to derive a thumbprint
// HMAC key from an ordered pair of nonces. spec.md §4.3 only specifies that
// the thumbprint key is "a derivation of the two nonces"; this resolves
// that Open Question the same way pkg/cryptor resolves the frame HMAC
// key's provenance (see DESIGN.md).
var thumbprintInfo = []byte("CdpNearShareThumbprint")

// thumbprintKey derives the HMAC key used to compute/verify a device-auth
// thumbprint from an ordered pair of nonces. Order matters: a request's
// thumbprint is keyed on (remote, local); the paired response reverses the
// order to (local, remote), per spec.md §4.3's "thumbprint over the
// reversed nonce ordering".
func thumbprintKey(first, second []byte) ([]byte, error) {
	return crypto.HKDFSHA256(append(append([]byte(nil), first...), second...), nil, thumbprintInfo, ThumbprintSize)
}

// computeThumbprint computes the HMAC-SHA256 thumbprint over certificate
// using the key derived from the given nonce ordering.
func computeThumbprint(nonce1, nonce2, certificate []byte) ([]byte, error) {
	key, err := thumbprintKey(nonce1, nonce2)
	if err != nil {
		return nil, err
	}
	return crypto.HMACSHA256Slice(key, certificate), nil
}

// verifyThumbprint reports whether thumbprint is the HMAC-SHA256 over
// certificate keyed on (nonce1, nonce2).
func verifyThumbprint(nonce1, nonce2, certificate, thumbprint []byte) (bool, error) {
	expected, err := computeThumbprint(nonce1, nonce2, certificate)
	if err != nil {
		return false, err
	}
	return crypto.HMACEqual(expected, thumbprint), nil
}
