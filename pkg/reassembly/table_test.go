package reassembly

import (
	"bytes"
	"testing"
)

func TestAddFragment_CompletesAtDeclaredCount(t *testing.T) {
	table := NewTable()

	msg := table.AddFragment(1, 3, []byte("foo"))
	if msg.IsComplete() {
		t.Fatal("complete after 1/3 fragments")
	}
	msg = table.AddFragment(1, 3, []byte("bar"))
	if msg.IsComplete() {
		t.Fatal("complete after 2/3 fragments")
	}
	msg = table.AddFragment(1, 3, []byte("baz"))
	if !msg.IsComplete() {
		t.Fatal("not complete after 3/3 fragments")
	}

	want := []byte("foobarbaz")
	if !bytes.Equal(msg.Bytes(), want) {
		t.Errorf("Bytes() = %q, want %q", msg.Bytes(), want)
	}
}

func TestAddFragment_LazyCreatesUnknownSequence(t *testing.T) {
	table := NewTable()
	table.AddFragment(42, 1, []byte("x"))
	if table.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", table.Count())
	}
}

func TestAddFragment_IndependentSequenceNumbers(t *testing.T) {
	table := NewTable()
	table.AddFragment(1, 1, []byte("a"))
	table.AddFragment(2, 1, []byte("b"))
	if table.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", table.Count())
	}
}

func TestRemove_AfterResolutionPreventsReopen(t *testing.T) {
	table := NewTable()
	table.AddFragment(5, 1, []byte("done"))
	table.Remove(5)
	if table.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 after Remove", table.Count())
	}

	// A duplicate final fragment arriving after Remove lazily creates a
	// fresh entry rather than reopening the old one's accumulated state.
	msg := table.AddFragment(5, 1, []byte("dup"))
	if !bytes.Equal(msg.Bytes(), []byte("dup")) {
		t.Errorf("Bytes() = %q, want %q (fresh entry, not reopened)", msg.Bytes(), "dup")
	}
}
