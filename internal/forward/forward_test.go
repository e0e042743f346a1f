package forward

import (
	"context"
	"errors"
	"testing"

	"github.com/kazwalker/elmterm/internal/analyzer"
)

type fakeSink struct {
	published int
	err       error
	closed    bool
}

func (f *fakeSink) Publish(context.Context, *analyzer.Annotation) error {
	f.published++
	return f.err
}

func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

func TestNullSinkIsNoOp(t *testing.T) {
	var s NullSink
	if err := s.Publish(context.Background(), &analyzer.Annotation{}); err != nil {
		t.Fatalf("NullSink.Publish returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("NullSink.Close returned error: %v", err)
	}
}

func TestMultiSinkFansOutToAll(t *testing.T) {
	a := &fakeSink{}
	b := &fakeSink{}
	m := NewMultiSink(a, b)

	if err := m.Publish(context.Background(), &analyzer.Annotation{Headline: "x"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if a.published != 1 || b.published != 1 {
		t.Fatalf("expected both sinks published to, got a=%d b=%d", a.published, b.published)
	}
}

func TestMultiSinkIgnoresNilEntries(t *testing.T) {
	a := &fakeSink{}
	m := NewMultiSink(a, nil)
	if len(m.sinks) != 1 {
		t.Fatalf("expected nil sink dropped, got %d sinks", len(m.sinks))
	}
}

func TestMultiSinkReturnsFirstErrorButStillPublishesAll(t *testing.T) {
	failing := &fakeSink{err: errors.New("boom")}
	healthy := &fakeSink{}
	m := NewMultiSink(failing, healthy)

	err := m.Publish(context.Background(), &analyzer.Annotation{})
	if err == nil {
		t.Fatalf("expected first sink's error to propagate")
	}
	if healthy.published != 1 {
		t.Fatalf("expected second sink still published despite first failing")
	}
}

func TestMultiSinkCloseClosesAll(t *testing.T) {
	a := &fakeSink{}
	b := &fakeSink{}
	m := NewMultiSink(a, b)
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Fatalf("expected both sinks closed")
	}
}
