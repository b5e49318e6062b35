package cryptor

import (
	"github.com/cdpnear/nearshare/pkg/crypto"
)

// hmacKeyInfo is the HKDF "info" parameter used to derive the frame HMAC
// key from the raw ECDH shared secret. The AES key and IV
// are taken directly from the secret's two halves per the wire constants;
// the HMAC key is not specified explicitly, so it is derived out-of-band
// via HKDF-SHA256 (see DESIGN.md Open Question resolution).
var hmacKeyInfo = []byte("CdpNearShareHmacKey")

const (
	// secretLen is the length of the raw ECDH shared secret (P-256
	// x-coordinate), split evenly into an AES-128 key and a CBC IV.
	secretLen = 32

	// AESKeyLen is the AES-128-CBC key size in bytes.
	AESKeyLen = 16

	// IVLen is the AES-CBC IV size in bytes.
	IVLen = 16

	// HMACKeyLen is the derived HMAC-SHA256 key size in bytes.
	HMACKeyLen = 32

	// PublicKeySize is the byte length of an uncompressed P-256 public
	// point (0x04 || X || Y), as carried by the Connect handshake.
	PublicKeySize = crypto.P256PublicKeySizeBytes
)

// KeyPair wraps a P-256 key pair used for the session's local half of the
// ECDH key agreement.
type KeyPair struct {
	inner *crypto.P256KeyPair
}

// GenerateKeyPair creates a fresh local P-256 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	kp, err := crypto.P256GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return &KeyPair{inner: kp}, nil
}

// PublicKey returns the uncompressed (0x04 || X || Y) public point.
func (k *KeyPair) PublicKey() []byte {
	return k.inner.P256PublicKey()
}

// Keys holds the three symmetric keys derived from one ECDH shared secret.
type Keys struct {
	AESKey  [AESKeyLen]byte
	IV      [IVLen]byte
	HMACKey [HMACKeyLen]byte
}

// DeriveKeys computes the ECDH shared secret between the local key pair and
// the remote's uncompressed public point, then splits/derives the AES key,
// IV, and HMAC key the cryptor needs.
func DeriveKeys(local *KeyPair, remotePublicKey []byte) (*Keys, error) {
	secret, err := crypto.P256ECDH(local.inner, remotePublicKey)
	if err != nil {
		return nil, err
	}
	return deriveKeysFromSecret(secret)
}

func deriveKeysFromSecret(secret []byte) (*Keys, error) {
	if len(secret) != secretLen {
		return nil, ErrInvalidSecret
	}

	hmacKey, err := crypto.HKDFSHA256(secret, nil, hmacKeyInfo, HMACKeyLen)
	if err != nil {
		return nil, err
	}

	keys := &Keys{}
	copy(keys.AESKey[:], secret[:AESKeyLen])
	copy(keys.IV[:], secret[AESKeyLen:AESKeyLen+IVLen])
	copy(keys.HMACKey[:], hmacKey)
	return keys, nil
}
