// Package cryptor implements the CDP Near Share session envelope: AES-128-CBC
// encryption plus an HMAC-SHA256 computed over the serialized CommonHeader
// and ciphertext, with keys derived from a P-256 ECDH shared secret.
package cryptor

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/cdpnear/nearshare/pkg/crypto"
	"github.com/cdpnear/nearshare/pkg/wire"
)

// HMACSize is the length of the trailing HMAC-SHA256 tag on every
// encrypted frame.
const HMACSize = 32

// Cryptor encrypts and decrypts session payloads once the ECDH handshake
// has completed. It is not internally synchronized: callers serialize
// access the same way the session serializes its single writer (see
// spec's concurrency model).
type Cryptor struct {
	keys *Keys
}

// New constructs a Cryptor from already-derived keys (see DeriveKeys).
func New(keys *Keys) *Cryptor {
	return &Cryptor{keys: keys}
}

// EncryptMessage serializes body into a scratch buffer, PKCS7-pads and
// CBC-encrypts it, stamps header.PayloadSize to the ciphertext length, and
// returns header || ciphertext || HMAC-SHA256(header || ciphertext).
func (c *Cryptor) EncryptMessage(header *wire.CommonHeader, body []byte) ([]byte, error) {
	padded := pkcs7Pad(body, aes.BlockSize)

	block, err := aes.NewCipher(c.keys.AESKey[:])
	if err != nil {
		return nil, err
	}
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, c.keys.IV[:]).CryptBlocks(ciphertext, padded)

	header.PayloadSize = uint32(len(ciphertext))
	w := wire.NewWriter()
	wire.EncodeHeader(w, header)
	headerBytes := w.Bytes()

	mac := crypto.HMACSHA256Slice(c.keys.HMACKey[:], concat(headerBytes, ciphertext))

	return concat(headerBytes, ciphertext, mac), nil
}

// Read parses an encrypted frame (header || ciphertext || HMAC), verifies
// the HMAC over the header and ciphertext, and decrypts the ciphertext.
// It returns the header and the recovered plaintext. A mismatched HMAC
// returns ErrIntegrity without attempting to decrypt.
func (c *Cryptor) Read(frame []byte) (*wire.CommonHeader, []byte, error) {
	r := wire.NewReader(frame)
	header, err := wire.DecodeHeader(r)
	if err != nil {
		return nil, nil, err
	}

	if r.Remaining() < HMACSize {
		return nil, nil, ErrShortFrame
	}
	if r.Remaining() != int(header.PayloadSize)+HMACSize {
		return nil, nil, ErrShortFrame
	}

	ciphertext, err := r.Bytes(int(header.PayloadSize))
	if err != nil {
		return nil, nil, err
	}
	tag, err := r.Bytes(HMACSize)
	if err != nil {
		return nil, nil, err
	}

	// Re-derive the exact header bytes that were authenticated: the
	// header's own encoding is deterministic given its (now fully
	// populated, including PayloadSize) fields.
	hw := wire.NewWriter()
	wire.EncodeHeader(hw, header)
	headerBytes := hw.Bytes()

	expected := crypto.HMACSHA256Slice(c.keys.HMACKey[:], concat(headerBytes, ciphertext))
	if !crypto.HMACEqual(expected, tag) {
		return nil, nil, ErrIntegrity
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, nil, ErrShortCiphertext
	}
	block, err := aes.NewCipher(c.keys.AESKey[:])
	if err != nil {
		return nil, nil, err
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, c.keys.IV[:]).CryptBlocks(plaintext, ciphertext)

	plaintext, err = pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, nil, err
	}

	return header, plaintext, nil
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrShortCiphertext
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrShortCiphertext
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrShortCiphertext
		}
	}
	return data[:len(data)-padLen], nil
}
