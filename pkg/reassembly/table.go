package reassembly

import "sync"

// Table is a per-session reassembly table keyed by SequenceNumber. It is
// touched by the single reader goroutine (AddFragment, lazily creating
// entries for unknown sequence numbers) and by the cleanup step of the
// background application task after it resolves a completed message
// (Remove), per spec.md §5's single-writer/cleanup-after ownership split. A
// lock still guards the map since those two call sites run on different
// goroutines.
type Table struct {
	mu       sync.Mutex
	messages map[uint32]*Message
}

// NewTable returns an empty reassembly table.
func NewTable() *Table {
	return &Table{messages: make(map[uint32]*Message)}
}

// AddFragment appends payload to the message at sequenceNumber, creating a
// new entry if none exists yet, and returns that message; call its
// IsComplete to learn whether every fragment has arrived.
func (t *Table) AddFragment(sequenceNumber uint32, fragmentCount uint16, payload []byte) *Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg, ok := t.messages[sequenceNumber]
	if !ok {
		msg = NewMessage(fragmentCount)
		t.messages[sequenceNumber] = msg
	}
	msg.AddFragment(payload)
	return msg
}

// Remove deletes the entry for sequenceNumber, e.g. once the application
// handler has resolved a completed message, so a duplicate final fragment
// cannot reopen it.
func (t *Table) Remove(sequenceNumber uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.messages, sequenceNumber)
}

// Count returns the number of reassembly entries not yet removed. A
// completed message stays counted until Remove is called for it.
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}
