// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

// Package forward publishes decoded Annotation records to an optional
// external sink for offline analysis, the enrichment SPEC_FULL.md §4.9
// adds on top of spec.md's terminal-only rendering. Every Sink is
// best-effort: a publish failure never stalls or aborts the terminal,
// grounded on bingwumeihuo-car-gateway's mq.Producer/NoOpProducer split.
package forward

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kazwalker/elmterm/internal/analyzer"
)

// Record is the JSON wire shape published to a sink: an Annotation plus
// the wall-clock time it was rendered.
type Record struct {
	Time      time.Time `json:"time"`
	Direction string    `json:"direction"`
	Severity  string    `json:"severity"`
	Headline  string    `json:"headline"`
	Details   []string  `json:"details"`
}

func newRecord(a *analyzer.Annotation) Record {
	dir := "incoming"
	if a.Direction == analyzer.Outgoing {
		dir = "outgoing"
	}
	sev := "info"
	switch a.Severity {
	case analyzer.SeverityWarning:
		sev = "warning"
	case analyzer.SeverityError:
		sev = "error"
	}
	return Record{Time: time.Now(), Direction: dir, Severity: sev, Headline: a.Headline, Details: a.Details}
}

// Sink is the destination an Annotation is forwarded to. Implementations
// must not block the caller for long; Publish is called synchronously
// from the transport-reader goroutine's hot path.
type Sink interface {
	Publish(ctx context.Context, a *analyzer.Annotation) error
	Close() error
}

// NullSink discards everything; used when no forward config is set.
type NullSink struct{}

func (NullSink) Publish(context.Context, *analyzer.Annotation) error { return nil }
func (NullSink) Close() error                                       { return nil }

// MultiSink fans a publish out to every configured sink, collecting (but
// not stopping on) individual failures.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink returns a MultiSink wrapping the given sinks, dropping any
// nil entries.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiSink) Publish(ctx context.Context, a *analyzer.Annotation) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, a); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func marshal(a *analyzer.Annotation) ([]byte, error) {
	return json.Marshal(newRecord(a))
}
