package platform

import "testing"

func TestMock_RecordsCalls(t *testing.T) {
	m := NewMock()
	m.Log(LevelInfo, "hello")
	m.OnReceivedUri("phone", "https://example.com")

	if len(m.Logs) != 1 || m.Logs[0] != "info: hello" {
		t.Fatalf("Logs = %v", m.Logs)
	}
	if len(m.ReceivedURIs) != 1 || m.ReceivedURIs[0] != (ReceivedURI{DeviceName: "phone", URI: "https://example.com"}) {
		t.Fatalf("ReceivedURIs = %v", m.ReceivedURIs)
	}
}

func TestMock_OnFileTransferCancelsByDefault(t *testing.T) {
	m := NewMock()
	token := NewFileTransferToken("phone", "photo.jpg", 100)

	m.OnFileTransfer(token)

	_, cancelled := token.AwaitDecision()
	if !cancelled {
		t.Fatal("default Mock should cancel unconfigured transfers")
	}
	if len(m.FileTransfers) != 1 || m.FileTransfers[0] != token {
		t.Fatalf("FileTransfers = %v", m.FileTransfers)
	}
}

func TestMock_OnFileTransferFuncDrivesAcceptance(t *testing.T) {
	m := NewMock()
	sink := &memSink{}
	m.OnFileTransferFunc = func(token *FileTransferToken) {
		token.Accept(sink)
	}

	token := NewFileTransferToken("phone", "photo.jpg", 100)
	m.OnFileTransfer(token)

	gotSink, cancelled := token.AwaitDecision()
	if cancelled || gotSink != sink {
		t.Fatalf("AwaitDecision = (%v, %v), want (sink, false)", gotSink, cancelled)
	}
}
