// Package nearshare implements the Near Share channel application: a
// single-shot receiver of one URI or one file per channel (spec.md §4.7).
package nearshare

import (
	"fmt"
	"sync"

	"github.com/pion/logging"

	"github.com/cdpnear/nearshare/pkg/channel"
	"github.com/cdpnear/nearshare/pkg/platform"
	"github.com/cdpnear/nearshare/pkg/valueset"
	"github.com/cdpnear/nearshare/pkg/wire"
)

type state int

const (
	stateAwaitingStart state = iota
	stateAwaitingFetchResponses
	stateDone
)

// App is one channel's Near Share state machine. It implements
// channel.Application.
type App struct {
	deviceName string
	handler    platform.Handler
	log        logging.LeveledLogger

	mu          sync.Mutex
	state       state
	bytesToSend uint64
	transferred uint64
	token       *platform.FileTransferToken
}

// New constructs a fresh Near Share application for one channel. deviceName
// is the peer's display name, carried by the StartChannelRequest that opens
// the channel.
func New(deviceName string, handler platform.Handler, loggerFactory logging.LoggerFactory) *App {
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}
	return &App{
		deviceName: deviceName,
		handler:    handler,
		log:        loggerFactory.NewLogger("nearshare"),
	}
}

// HandleMessage implements channel.Application.
func (a *App) HandleMessage(ch *channel.Channel, header *wire.CommonHeader, body []byte) error {
	if len(body) < correlationPrefixSize {
		return ErrParse
	}
	prefix := body[:correlationPrefixSize]

	vs, err := valueset.Decode(body[correlationPrefixSize:])
	if err != nil {
		return fmt.Errorf("%w: decode valueset: %w", ErrParse, err)
	}

	if header.Flags.Has(wire.FlagShouldAck) {
		if err := a.sendAck(ch, header); err != nil {
			return err
		}
	}

	ctrl, err := vs.GetString(keyControlMessage)
	if err != nil {
		return err
	}

	switch ctrl {
	case controlStartRequest:
		return a.handleStartRequest(ch, prefix, vs)
	case controlFetchDataResponse:
		return a.handleFetchDataResponse(ch, prefix, vs)
	default:
		return nil
	}
}

// sendAck replies with a standalone Ack frame, independent of whatever the
// control message itself provokes (spec.md §4.7).
func (a *App) sendAck(ch *channel.Channel, header *wire.CommonHeader) error {
	ackHeader := &wire.CommonHeader{Type: wire.MessageTypeAck, RequestID: header.RequestID, FragmentCount: 1}
	return ch.Write(ackHeader, nil)
}

func (a *App) handleStartRequest(ch *channel.Channel, prefix []byte, vs *valueset.ValueSet) error {
	a.mu.Lock()
	if a.state != stateAwaitingStart {
		a.mu.Unlock()
		return ErrProtocolViolation
	}
	a.mu.Unlock()

	kind, err := vs.GetString(keyDataKind)
	if err != nil {
		return err
	}

	switch kind {
	case dataKindUri:
		return a.handleUriRequest(ch, prefix, vs)
	case dataKindFile:
		return a.handleFileRequest(ch, prefix, vs)
	default:
		return ErrNotImplemented
	}
}

func (a *App) handleUriRequest(ch *channel.Channel, prefix []byte, vs *valueset.ValueSet) error {
	uri, err := vs.GetString(keyUri)
	if err != nil {
		return err
	}

	a.handler.OnReceivedUri(a.deviceName, uri)

	if err := a.sendStartResponse(ch, prefix); err != nil {
		return err
	}
	return a.finish(ch)
}

func (a *App) handleFileRequest(ch *channel.Channel, prefix []byte, vs *valueset.ValueSet) error {
	names, err := vs.GetStringList(keyFileNames)
	if err != nil {
		return err
	}
	if len(names) != 1 {
		return ErrNotImplemented
	}
	bytesToSend, err := vs.GetUInt64(keyBytesToSend)
	if err != nil {
		return err
	}

	token := platform.NewFileTransferToken(a.deviceName, names[0], bytesToSend)

	a.mu.Lock()
	a.bytesToSend = bytesToSend
	a.token = token
	a.state = stateAwaitingFetchResponses
	a.mu.Unlock()

	a.handler.OnFileTransfer(token)

	if _, cancelled := token.AwaitDecision(); cancelled {
		return ErrTransferCancelled
	}

	return a.requestChunks(ch, prefix, bytesToSend)
}

// requestChunks issues a contiguous series of FetchDataRequest messages
// covering [0, bytesToSend), each requesting a full-sized PartitionSize
// chunk even for the final, partially-filled one (spec.md §4.7: "the
// implementation may request a full-sized chunk and truncate on receive").
func (a *App) requestChunks(ch *channel.Channel, prefix []byte, bytesToSend uint64) error {
	for pos := uint64(0); pos < bytesToSend; pos += PartitionSize {
		vs := valueset.New()
		vs.SetString(keyControlMessage, controlFetchDataRequest)
		vs.SetUInt64(keyBlobPosition, pos)
		vs.SetUInt64(keyBlobSize, PartitionSize)
		vs.SetUInt32(keyContentId, 0)

		body := append(append([]byte(nil), prefix...), valueset.Encode(vs)...)
		header := &wire.CommonHeader{Type: wire.MessageTypeSession, FragmentCount: 1}
		if err := ch.Write(header, body); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) handleFetchDataResponse(ch *channel.Channel, prefix []byte, vs *valueset.ValueSet) error {
	a.mu.Lock()
	if a.state != stateAwaitingFetchResponses {
		a.mu.Unlock()
		return ErrProtocolViolation
	}
	token := a.token
	bytesToSend := a.bytesToSend
	a.mu.Unlock()

	position, err := vs.GetUInt64(keyBlobPosition)
	if err != nil {
		return err
	}
	blob, err := vs.GetBytes(keyDataBlob)
	if err != nil {
		return err
	}
	if position > bytesToSend || uint64(len(blob)) > PartitionSize {
		return ErrProtocolViolation
	}

	writeLen := uint64(len(blob))
	if position+writeLen > bytesToSend {
		writeLen = bytesToSend - position
	}
	if writeLen > 0 {
		if _, err := token.WriteAt(blob[:writeLen], int64(position)); err != nil {
			return fmt.Errorf("nearshare: write sink: %w", err)
		}
	}

	a.mu.Lock()
	a.transferred += writeLen
	done := a.transferred >= bytesToSend
	a.mu.Unlock()

	if !done {
		return nil
	}

	if err := a.sendStartResponse(ch, prefix); err != nil {
		return err
	}
	return a.finish(ch)
}

func (a *App) sendStartResponse(ch *channel.Channel, prefix []byte) error {
	vs := valueset.New()
	vs.SetString(keyControlMessage, controlStartResponse)

	body := append(append([]byte(nil), prefix...), valueset.Encode(vs)...)
	header := &wire.CommonHeader{Type: wire.MessageTypeSession, FragmentCount: 1}
	return ch.Write(header, body)
}

// finish marks the transfer complete and closes the channel, which for
// Near Share also disposes the owning session (spec.md §4.7: "close the
// channel and session").
func (a *App) finish(ch *channel.Channel) error {
	a.mu.Lock()
	a.state = stateDone
	a.mu.Unlock()
	return ch.Close()
}
