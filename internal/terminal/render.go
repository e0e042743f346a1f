// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/kazwalker/elmterm/internal/analyzer"
	"github.com/kazwalker/elmterm/internal/palette"
)

// editSnapshot is what the output writer needs to redraw the in-progress
// input line: spec.md §4.5's "(active, buffer, cursor)" triple. Render jobs
// reach the output side over a channel; the snapshot does not — the output
// side reads it on demand through the engine's snapshot func, under the
// engine's RWMutex.
type editSnapshot struct {
	active bool
	buffer string
	cursor int
}

type renderJobKind int

const (
	jobAnnotation renderJobKind = iota
	jobStatus
	jobErrorText
	jobRaw
	jobRedraw // redraw the prompt line only; no text printed
)

type renderJob struct {
	kind       renderJobKind
	annotation *analyzer.Annotation
	text       string
}

// renderer owns the terminal cursor and serializes every write to stdout,
// so annotations, status lines, and prompt redraws never interleave
// mid-line — the single serialized output channel spec.md §5 requires.
type renderer struct {
	out    io.Writer
	pal    palette.Palette
	prompt string
	snap   func() editSnapshot
}

func newRenderer(out io.Writer, pal palette.Palette, prompt string, snap func() editSnapshot) *renderer {
	return &renderer{out: out, pal: pal, prompt: prompt, snap: snap}
}

// clearLine implements step (1) of the redraw protocol: CR plus
// erase-to-end-of-line.
func (r *renderer) clearLine() {
	fmt.Fprint(r.out, "\r\x1b[K")
}

// redrawPrompt implements steps (3) of the redraw protocol: reprint
// <prompt><buffer> and move the cursor left by (len(buffer) - cursor)
// display columns, computed with go-runewidth so multi-byte runes don't
// throw off the cursor restore.
func (r *renderer) redrawPrompt(s editSnapshot) {
	fmt.Fprint(r.out, r.pal.Prompt(r.prompt), s.buffer)
	trailingRunes := []rune(s.buffer)[s.cursor:]
	back := runewidth.StringWidth(string(trailingRunes))
	if back > 0 {
		fmt.Fprintf(r.out, "\x1b[%dD", back)
	}
}

func (r *renderer) process(job renderJob) {
	r.clearLine()

	switch job.kind {
	case jobAnnotation:
		r.renderAnnotation(job.annotation)
	case jobStatus:
		fmt.Fprintln(r.out, r.pal.Status(job.text))
	case jobErrorText:
		fmt.Fprintln(r.out, r.pal.Error(job.text))
	case jobRaw:
		fmt.Fprintln(r.out, job.text)
	case jobRedraw:
		// nothing to print; clearLine + the redrawPrompt below does the work
	}

	snap := r.snap()
	if snap.active {
		r.redrawPrompt(snap)
	}
}

func (r *renderer) renderAnnotation(a *analyzer.Annotation) {
	dir := "incoming"
	if a.Direction == analyzer.Outgoing {
		dir = "outgoing"
	}
	arrow := "<-"
	if dir == "outgoing" {
		arrow = "->"
	}

	headline := fmt.Sprintf("%s %s", arrow, a.Headline)
	switch a.Severity {
	case analyzer.SeverityWarning:
		fmt.Fprintln(r.out, r.pal.Warning(headline))
	case analyzer.SeverityError:
		fmt.Fprintln(r.out, r.pal.Error(headline))
	default:
		fmt.Fprintln(r.out, r.pal.Headline(dir, headline))
	}

	for _, d := range a.Details {
		fmt.Fprintln(r.out, r.pal.Detail("   "+d))
	}
}

// hexdumpLines renders a --hexdump style dump as two lines: the hex line,
// then the ASCII line.
func hexdumpLines(format, ascii string) []string {
	return []string{
		fmt.Sprintf("hex:   %s", format),
		fmt.Sprintf("ascii: %s", ascii),
	}
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
