package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// P-256 constants for the CDP Near Share cryptor
const (
	// P256GroupSizeBits is the group size in bits (CRYPTO_GROUP_SIZE_BITS).
	P256GroupSizeBits = 256

	// P256GroupSizeBytes is the group size in bytes (CRYPTO_GROUP_SIZE_BYTES).
	P256GroupSizeBytes = 32

	// P256PublicKeySizeBytes is the uncompressed public key size (CRYPTO_PUBLIC_KEY_SIZE_BYTES).
	// Format: 0x04 || X (32 bytes) || Y (32 bytes) = 65 bytes
	P256PublicKeySizeBytes = 65
)

// P256KeyPair represents a P-256 key pair.
// the KeyPair type for the CDP Near Share cryptor
type P256KeyPair struct {
	ecdhPrivate *ecdh.PrivateKey
}

// P256PublicKey returns the public key in uncompressed format (65 bytes).
// Format: 0x04 || X (32 bytes) || Y (32 bytes)
func (kp *P256KeyPair) P256PublicKey() []byte {
	return kp.ecdhPrivate.PublicKey().Bytes()
}

// P256PrivateKey returns the private key as a 32-byte scalar.
func (kp *P256KeyPair) P256PrivateKey() []byte {
	return kp.ecdhPrivate.Bytes()
}

// P256GenerateKeyPair generates a new P-256 key pair.
// Used by the CDP Near Share cryptor for session key agreement and framing integrity.
func P256GenerateKeyPair() (*P256KeyPair, error) {
	ecdhPriv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ECDH key: %w", err)
	}

	return &P256KeyPair{ecdhPrivate: ecdhPriv}, nil
}

// P256ECDH computes the ECDH shared secret.
// Used by the CDP Near Share cryptor for session key agreement and framing integrity.
//
// Parameters:
//   - keyPair: Our private key
//   - peerPublicKey: Peer's 65-byte uncompressed public key (0x04 || X || Y)
//
// Returns the 32-byte shared secret (x-coordinate of the shared point).
func P256ECDH(keyPair *P256KeyPair, peerPublicKey []byte) ([]byte, error) {
	if len(peerPublicKey) != P256PublicKeySizeBytes {
		return nil, fmt.Errorf("peer public key must be %d bytes, got %d", P256PublicKeySizeBytes, len(peerPublicKey))
	}

	peerPub, err := ecdh.P256().NewPublicKey(peerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid peer public key: %w", err)
	}

	secret, err := keyPair.ecdhPrivate.ECDH(peerPub)
	if err != nil {
		return nil, fmt.Errorf("ECDH computation failed: %w", err)
	}

	return secret, nil
}
