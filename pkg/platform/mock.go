package platform

import "sync"

// ReceivedURI records one OnReceivedUri call a Mock observed.
type ReceivedURI struct {
	DeviceName string
	URI        string
}

// Mock is a Handler that records every call it receives, for use in package
// and integration tests.
type Mock struct {
	mu sync.Mutex

	Logs          []string
	ReceivedURIs  []ReceivedURI
	FileTransfers []*FileTransferToken

	// OnFileTransferFunc, when set, runs synchronously from OnFileTransfer
	// so a test can drive Accept/Cancel inline. If nil, OnFileTransfer
	// cancels every transfer.
	OnFileTransferFunc func(token *FileTransferToken)
}

// NewMock returns an empty Mock.
func NewMock() *Mock { return &Mock{} }

func (m *Mock) Log(level Level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, level.String()+": "+message)
}

func (m *Mock) OnReceivedUri(deviceName, uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReceivedURIs = append(m.ReceivedURIs, ReceivedURI{DeviceName: deviceName, URI: uri})
}

func (m *Mock) OnFileTransfer(token *FileTransferToken) {
	m.mu.Lock()
	m.FileTransfers = append(m.FileTransfers, token)
	fn := m.OnFileTransferFunc
	m.mu.Unlock()

	if fn != nil {
		fn(token)
		return
	}
	token.Cancel()
}
