// Package transcript implements the append-only conversation log kept for one
// chat session.
//
// Entries are numbered from 1 in the order they are appended and are never
// changed or removed afterwards. Readers observe the log through iterators
// ([Transcript.Tail], [Transcript.All]) whose bounds are fixed when the
// iterator is created, so a view taken now keeps describing the same entries
// even if the session appends more later.
package transcript

import (
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced an entry.
type Speaker int

const (
	User Speaker = iota
	Bot
)

// String returns "user" or "bot".
func (s Speaker) String() string {
	if s == Bot {
		return "bot"
	}
	return "user"
}

// Entry is one line of the conversation.
type Entry struct {
	// Ordinal is the 1-based position of the entry in its transcript.
	Ordinal int
	Speaker Speaker
	Text    string
	// At is when the entry was appended.
	At time.Time
}

// Transcript is an ordered, append-only sequence of entries. It is safe for
// concurrent use.
type Transcript struct {
	id        string
	startedAt time.Time
	now       func() time.Time

	mu      sync.RWMutex
	entries []Entry
}

// Option configures a Transcript.
type Option func(*Transcript)

// WithClock sets the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(t *Transcript) {
		if now != nil {
			t.now = now
		}
	}
}

// WithID sets the transcript ID instead of generating a random UUID.
func WithID(id string) Option {
	return func(t *Transcript) {
		if id != "" {
			t.id = id
		}
	}
}

// New returns an empty transcript.
func New(opts ...Option) *Transcript {
	t := &Transcript{now: time.Now}
	for _, o := range opts {
		o(t)
	}
	if t.id == "" {
		t.id = uuid.NewString()
	}
	t.startedAt = t.now()
	return t
}

// ID returns the transcript's identifier.
func (t *Transcript) ID() string { return t.id }

// StartedAt returns when the transcript was created.
func (t *Transcript) StartedAt() time.Time { return t.startedAt }

// AppendUser appends a user entry and returns it.
func (t *Transcript) AppendUser(text string) Entry {
	return t.append(User, text)
}

// AppendBot appends a bot entry and returns it.
func (t *Transcript) AppendBot(text string) Entry {
	return t.append(Bot, text)
}

func (t *Transcript) append(s Speaker, text string) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := Entry{
		Ordinal: len(t.entries) + 1,
		Speaker: s,
		Text:    text,
		At:      t.now(),
	}
	t.entries = append(t.entries, e)
	return e
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Tail returns the most recent n entries in insertion order. If n exceeds
// the length every entry is yielded; if n <= 0 nothing is. The sequence may
// be iterated any number of times and always yields the same entries.
func (t *Transcript) Tail(n int) iter.Seq[Entry] {
	if n <= 0 {
		return func(func(Entry) bool) {}
	}
	end := t.Len()
	return t.view(max(0, end-n), end)
}

// All returns every entry appended so far.
func (t *Transcript) All() iter.Seq[Entry] {
	return t.view(0, t.Len())
}

// view yields entries[start:end]. Entries below len are immutable, so each
// one is read under the lock independently of concurrent appends.
func (t *Transcript) view(start, end int) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for i := start; i < end; i++ {
			t.mu.RLock()
			e := t.entries[i]
			t.mu.RUnlock()
			if !yield(e) {
				return
			}
		}
	}
}
