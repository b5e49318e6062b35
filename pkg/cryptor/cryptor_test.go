package cryptor

import (
	"testing"

	"github.com/cdpnear/nearshare/pkg/wire"
)

func testKeys(t *testing.T) (*Keys, *Keys) {
	t.Helper()
	local, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair local: %v", err)
	}
	remote, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair remote: %v", err)
	}

	localKeys, err := DeriveKeys(local, remote.PublicKey())
	if err != nil {
		t.Fatalf("DeriveKeys local: %v", err)
	}
	remoteKeys, err := DeriveKeys(remote, local.PublicKey())
	if err != nil {
		t.Fatalf("DeriveKeys remote: %v", err)
	}
	if localKeys.AESKey != remoteKeys.AESKey || localKeys.HMACKey != remoteKeys.HMACKey {
		t.Fatalf("ECDH shared keys did not agree between peers")
	}
	return localKeys, remoteKeys
}

func TestCryptorRoundTrip(t *testing.T) {
	localKeys, remoteKeys := testKeys(t)
	sender := New(localKeys)
	receiver := New(remoteKeys)

	header := &wire.CommonHeader{
		Type:           wire.MessageTypeSession,
		SessionIDLocal: 7,
		SequenceNumber: 3,
	}
	plaintext := []byte("a near share session payload")

	frame, err := sender.EncryptMessage(header, plaintext)
	if err != nil {
		t.Fatalf("EncryptMessage: %v", err)
	}

	gotHeader, gotPlaintext, err := receiver.Read(frame)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(gotPlaintext) != string(plaintext) {
		t.Fatalf("plaintext mismatch: got %q want %q", gotPlaintext, plaintext)
	}
	if gotHeader.SequenceNumber != header.SequenceNumber {
		t.Fatalf("header not preserved across envelope: got %+v", gotHeader)
	}
}

func TestCryptorRejectsTamperedCiphertext(t *testing.T) {
	localKeys, remoteKeys := testKeys(t)
	sender := New(localKeys)
	receiver := New(remoteKeys)

	header := &wire.CommonHeader{Type: wire.MessageTypeSession}
	frame, err := sender.EncryptMessage(header, []byte("flip a bit in me"))
	if err != nil {
		t.Fatalf("EncryptMessage: %v", err)
	}

	frame[len(frame)-1] ^= 0x01

	if _, _, err := receiver.Read(frame); err != ErrIntegrity {
		t.Fatalf("Read after tamper: got %v, want ErrIntegrity", err)
	}
}

func TestCryptorRejectsWrongKey(t *testing.T) {
	localKeys, _ := testKeys(t)
	other, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	third, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	wrongKeys, err := DeriveKeys(other, third.PublicKey())
	if err != nil {
		t.Fatalf("DeriveKeys: %v", err)
	}

	sender := New(localKeys)
	wrongReceiver := New(wrongKeys)

	frame, err := sender.EncryptMessage(&wire.CommonHeader{}, []byte("hello"))
	if err != nil {
		t.Fatalf("EncryptMessage: %v", err)
	}

	if _, _, err := wrongReceiver.Read(frame); err != ErrIntegrity {
		t.Fatalf("Read with wrong key: got %v, want ErrIntegrity", err)
	}
}
