// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

// Package terminal implements the line-oriented duplex terminal engine:
// the concurrency scaffolding that delivers adapter bytes to the
// analyzer, echo-suppresses local command echoes, interleaves analyzer
// annotations with live line editing, and performs non-blocking
// backpressured writes.
package terminal

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kazwalker/elmterm/internal/analyzer"
	"github.com/kazwalker/elmterm/internal/forward"
	"github.com/kazwalker/elmterm/internal/hexcodec"
	"github.com/kazwalker/elmterm/internal/history"
	"github.com/kazwalker/elmterm/internal/lineframer"
	"github.com/kazwalker/elmterm/internal/palette"
)

// Config carries everything the Engine needs to run one session. The
// caller (cmd/root.go) is responsible for opening the transport, loading
// history, and resolving the palette before constructing an Engine.
type Config struct {
	Conn       io.ReadWriter
	In         io.Reader // raw-mode stdin
	Out        io.Writer // stdout
	Prompt     string
	Terminator []byte
	Hexdump    bool
	Timestamps bool
	History    *history.Store
	Palette    palette.Palette
	AnalyzerOn bool
	Sink       forward.Sink
	Logger     *zap.SugaredLogger
}

// Engine ties the line editor, echo-suppression cell, write backpressure
// queue, and annotation printer to a live transport connection. One
// Engine serves one adapter session; construct a fresh one on reconnect.
type Engine struct {
	conn       io.ReadWriter
	in         io.Reader
	out        io.Writer
	prompt     string
	terminator []byte
	hexdump    bool
	timestamps bool

	history *history.Store
	pal     palette.Palette
	sink    forward.Sink
	logger  *zap.SugaredLogger

	analyzer *analyzer.Analyzer
	echo     *echoCell
	writeQ   *writeQueue
	renderer *renderer

	editor *lineEditor
	keys   *keyReader

	mu              sync.RWMutex
	editingActive   bool
	analyzerEnabled bool

	renderCh chan renderJob
	done     chan struct{}
}

// New constructs an Engine ready to Run.
func New(cfg Config) *Engine {
	e := &Engine{
		conn:            cfg.Conn,
		in:              cfg.In,
		out:             cfg.Out,
		prompt:          cfg.Prompt,
		terminator:      cfg.Terminator,
		hexdump:         cfg.Hexdump,
		timestamps:      cfg.Timestamps,
		history:         cfg.History,
		pal:             cfg.Palette,
		sink:            cfg.Sink,
		logger:          cfg.Logger,
		analyzer:        analyzer.New(),
		echo:            &echoCell{},
		writeQ:          &writeQueue{},
		editor:          newLineEditor(),
		keys:            newKeyReader(cfg.In),
		analyzerEnabled: cfg.AnalyzerOn,
		renderCh:        make(chan renderJob, 64),
		done:            make(chan struct{}),
	}
	if e.sink == nil {
		e.sink = forward.NullSink{}
	}
	e.editor.setHistory(e.history.Entries())
	e.renderer = newRenderer(e.out, e.pal, e.prompt, e.snapshot)
	return e
}

func (e *Engine) snapshot() editSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return editSnapshot{active: e.editingActive, buffer: e.editor.String(), cursor: e.editor.cursor}
}

// Run drives the three concurrent activities spec.md §5 names — the REPL
// task, the transport reader, and the output serializer — until the
// context is canceled, the transport closes, or the operator quits.
// Run blocks until shutdown is complete and returns the reason, if any.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.runOutputSerializer(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := e.runTransportReader(ctx); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
		cancel()
	}()

	e.mu.Lock()
	e.editingActive = true
	e.mu.Unlock()

	replErr := e.runREPL(ctx)

	cancel()
	// Unblock the transport reader's pending Read, if the transport
	// supports it, so the reader goroutine actually observes shutdown
	// rather than stay parked on a blocking syscall.
	if closer, ok := e.conn.(io.Closer); ok {
		closer.Close()
	}
	wg.Wait()

	if e.history.Dirty() {
		if err := e.history.Save(); err != nil {
			e.logger.Warnw("failed to save history on shutdown", "error", err)
		}
	}
	if err := e.sink.Close(); err != nil {
		e.logger.Warnw("failed to close forward sink", "error", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
	}
	return replErr
}

// runTransportReader is the transport-reader activity: blocking reads
// feeding the LineFramer, dispatching each complete line to the analyzer
// synchronously from this goroutine, per spec.md §5.
func (e *Engine) runTransportReader(ctx context.Context) error {
	framer := lineframer.New()
	buf := make([]byte, 4096)
	for {
		n, err := e.conn.Read(buf)
		if n > 0 {
			for _, line := range framer.Feed(buf[:n]) {
				e.handleIncomingLine(ctx, string(line))
			}
		}
		if err != nil {
			if err == io.EOF {
				e.logger.Debugw("connection closed by remote end")
				e.enqueueRender(renderJob{kind: jobStatus, text: "connection closed by remote end"})
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			e.logger.Errorw("transport read failed", "error", err)
			e.enqueueRender(renderJob{kind: jobErrorText, text: fmt.Sprintf("transport error: %v", err)})
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

func (e *Engine) handleIncomingLine(ctx context.Context, line string) {
	if e.echo.suppress(line) {
		return
	}

	e.mu.RLock()
	enabled := e.analyzerEnabled
	e.mu.RUnlock()
	if !enabled {
		e.enqueueRender(renderJob{kind: jobRaw, text: e.decorate(line)})
		return
	}

	ann := e.analyzer.AnnotateIncoming(line)
	if ann == nil {
		e.enqueueRender(renderJob{kind: jobRaw, text: e.decorate(line)})
		return
	}
	e.applyHexdump(ann, line, false)

	e.logAnnotation(ann)
	e.enqueueRender(renderJob{kind: jobAnnotation, annotation: ann})

	if err := e.sink.Publish(ctx, ann); err != nil {
		e.logger.Debugw("forward publish failed", "error", err)
	}
}

func (e *Engine) decorate(line string) string {
	if !e.timestamps {
		return line
	}
	return fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339), line)
}

// applyHexdump appends a hex+ASCII dump to ann's details when --hexdump is
// set. The line is parsed as hex (strictly for outgoing lines, with CAN
// header stripping for incoming ones) and the dump shows those bytes;
// lines that do not parse as hex, such as AT/ST commands, get no dump.
func (e *Engine) applyHexdump(ann *analyzer.Annotation, raw string, outgoing bool) {
	if !e.hexdump || ann == nil {
		return
	}
	var b []byte
	if outgoing {
		b = hexcodec.ParseStrict(raw)
	} else {
		b = hexcodec.ParseResponse(raw)
	}
	if b == nil {
		return
	}
	ann.Details = append(ann.Details, hexdumpLines(hexcodec.Format(b), hexcodec.ASCII(b))...)
}

func (e *Engine) logAnnotation(a *analyzer.Annotation) {
	switch a.Severity {
	case analyzer.SeverityWarning:
		e.logger.Warnw(a.Headline, "details", a.Details)
	case analyzer.SeverityError:
		e.logger.Errorw(a.Headline, "details", a.Details)
	default:
		e.logger.Debugw(a.Headline, "details", a.Details)
	}
}

// runOutputSerializer is the single-writer activity that owns stdout, so
// annotations, status lines, and prompt redraws never interleave.
func (e *Engine) runOutputSerializer(ctx context.Context) {
	for {
		select {
		case job, ok := <-e.renderCh:
			if !ok {
				return
			}
			e.renderer.process(job)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) enqueueRender(job renderJob) {
	select {
	case e.renderCh <- job:
	case <-e.done:
	}
}

// runREPL is the REPL task: blocking raw-mode reads driving the line
// editor and, on commit, the send path.
func (e *Engine) runREPL(ctx context.Context) error {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		k, err := e.keys.next()
		if err != nil {
			return nil // EOF or closed stdin: clean shutdown
		}

		switch k.kind {
		case keyCtrlD:
			e.mu.RLock()
			empty := e.editor.String() == ""
			e.mu.RUnlock()
			if empty {
				return nil
			}
		case keyCtrlC:
			e.mu.Lock()
			e.editor.cancel()
			e.mu.Unlock()
			e.redrawInline()
		case keyEnter:
			line := e.commitLine()
			if shutdown := e.handleCommittedLine(ctx, line); shutdown {
				return nil
			}
		case keyBackspace:
			e.mu.Lock()
			e.editor.backspace()
			e.mu.Unlock()
			e.redrawInline()
		case keyLeft:
			e.mu.Lock()
			e.editor.left()
			e.mu.Unlock()
			e.redrawInline()
		case keyRight:
			e.mu.Lock()
			e.editor.right()
			e.mu.Unlock()
			e.redrawInline()
		case keyUp:
			e.mu.Lock()
			e.editor.up()
			e.mu.Unlock()
			e.redrawInline()
		case keyDown:
			e.mu.Lock()
			e.editor.down()
			e.mu.Unlock()
			e.redrawInline()
		case keyRune:
			e.mu.Lock()
			e.editor.insert(k.r)
			e.mu.Unlock()
			e.redrawInline()
		}
	}
}

// redrawInline reprints the prompt line in place without an intervening
// annotation, for pure line-editing keystrokes.
func (e *Engine) redrawInline() {
	e.enqueueRender(renderJob{kind: jobRedraw})
}

func (e *Engine) commitLine() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editor.commit()
}

// handleCommittedLine dispatches a fully composed command: meta commands
// are intercepted, everything else is annotated and transmitted. Returns
// true if the operator requested shutdown.
func (e *Engine) handleCommittedLine(ctx context.Context, line string) bool {
	if result, ok := e.handleMeta(line); ok {
		if len(result.lines) > 0 {
			kind := jobRaw
			if result.isError {
				kind = jobErrorText
				e.logger.Warnw("meta command error", "message", joinLines(result.lines))
			}
			e.enqueueRender(renderJob{kind: kind, text: joinLines(result.lines)})
		}
		return result.shutdown
	}

	if line == "" {
		e.redrawInline()
		return false
	}

	e.history.Append(line)
	if err := e.history.Save(); err != nil {
		e.logger.Warnw("failed to save history", "error", err)
	}
	e.mu.Lock()
	e.editor.setHistory(e.history.Entries())
	e.mu.Unlock()

	e.mu.RLock()
	enabled := e.analyzerEnabled
	e.mu.RUnlock()
	if enabled {
		if ann := e.analyzer.AnnotateOutgoing(line); ann != nil {
			e.applyHexdump(ann, line, true)
			e.logAnnotation(ann)
			e.enqueueRender(renderJob{kind: jobAnnotation, annotation: ann})
			if err := e.sink.Publish(ctx, ann); err != nil {
				e.logger.Debugw("forward publish failed", "error", err)
			}
		} else {
			e.redrawInline()
		}
	} else {
		e.redrawInline()
	}

	e.send(ctx, line)
	return false
}

// send arms the echo cell, appends the terminator, and drains the write
// through the pending-write queue.
func (e *Engine) send(_ context.Context, line string) {
	e.echo.arm(line)

	payload := append([]byte(line), e.terminator...)
	e.writeQ.enqueue(payload)

	if err := e.writeQ.drain(e.conn.Write); err != nil {
		e.logger.Errorw("write failed", "error", err)
		e.enqueueRender(renderJob{kind: jobErrorText, text: fmt.Sprintf("write error: %v", err)})
	}
}
