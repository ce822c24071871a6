// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// NoRound marks an entry that does not belong to a round (startup, shutdown).
const NoRound = -1

// Entry is one line of the trail.
type Entry struct {
	Time    time.Time
	Round   int
	Level   slog.Level
	Message string
	Attrs   []slog.Attr
}

// Sink receives trail entries. Implementations must be safe for concurrent use.
type Sink interface {
	Record(e Entry)
}

// Info builds an info-level entry stamped now.
func Info(round int, msg string, attrs ...slog.Attr) Entry {
	return Entry{Time: time.Now(), Round: round, Level: slog.LevelInfo, Message: msg, Attrs: attrs}
}

// Warn builds a warn-level entry stamped now.
func Warn(round int, msg string, attrs ...slog.Attr) Entry {
	return Entry{Time: time.Now(), Round: round, Level: slog.LevelWarn, Message: msg, Attrs: attrs}
}

// Debug builds a debug-level entry stamped now.
func Debug(round int, msg string, attrs ...slog.Attr) Entry {
	return Entry{Time: time.Now(), Round: round, Level: slog.LevelDebug, Message: msg, Attrs: attrs}
}

// SlogSink writes entries to a slog.Logger, adding the round as an attribute.
type SlogSink struct {
	Logger *slog.Logger
}

// NewSlogSink returns a sink over l, or over slog.Default() when l is nil.
func NewSlogSink(l *slog.Logger) *SlogSink {
	if l == nil {
		l = slog.Default()
	}

	return &SlogSink{Logger: l}
}

// Record implements Sink.
func (s *SlogSink) Record(e Entry) {
	ctx := context.Background()
	if !s.Logger.Enabled(ctx, e.Level) {
		return
	}
	r := slog.NewRecord(e.Time, e.Level, e.Message, 0)
	if e.Round != NoRound {
		r.AddAttrs(slog.Int("round", e.Round))
	}
	r.AddAttrs(e.Attrs...)
	_ = s.Logger.Handler().Handle(ctx, r)
}

// MemorySink stores entries in memory.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// Record implements Sink.
func (m *MemorySink) Record(e Entry) {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
}

// Entries returns a copy of everything recorded so far.
func (m *MemorySink) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)

	return out
}

// Messages returns the messages of all entries, in order.
func (m *MemorySink) Messages() []string {
	entries := m.Entries()
	out := make([]string, len(entries))
	for i := range entries {
		out[i] = entries[i].Message
	}

	return out
}

// Find returns the entries whose message equals msg.
func (m *MemorySink) Find(msg string) []Entry {
	var out []Entry
	for _, e := range m.Entries() {
		if e.Message == msg {
			out = append(out, e)
		}
	}

	return out
}

type discard struct{}

func (discard) Record(Entry) {}

// Discard drops every entry.
var Discard Sink = discard{}

type multi []Sink

func (m multi) Record(e Entry) {
	for _, s := range m {
		s.Record(e)
	}
}

// Multi returns a sink that records into every non-nil sink given.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}

	return out
}

// Attr returns the value of the attribute named key in e, if present.
func (e Entry) Attr(key string) (slog.Value, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}
