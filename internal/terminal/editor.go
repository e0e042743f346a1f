// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

package terminal

// lineEditor is the command-under-composition buffer spec.md §3 describes:
// a (text, cursor) pair with cursor in [0, len(text)] measured in runes, so
// that multi-byte UTF-8 input moves the cursor one character at a time
// rather than one byte at a time.
type lineEditor struct {
	text   []rune
	cursor int

	history     []string
	historyIdx  int    // index into history while navigating; len(history) means "unsaved tail"
	unsavedTail []rune // what was being typed before Up was first pressed
}

func newLineEditor() *lineEditor {
	return &lineEditor{}
}

func (e *lineEditor) String() string {
	return string(e.text)
}

func (e *lineEditor) reset() {
	e.text = nil
	e.cursor = 0
	e.historyIdx = len(e.history)
	e.unsavedTail = nil
}

func (e *lineEditor) insert(r rune) {
	e.text = append(e.text[:e.cursor], append([]rune{r}, e.text[e.cursor:]...)...)
	e.cursor++
}

func (e *lineEditor) backspace() {
	if e.cursor == 0 {
		return
	}
	e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
	e.cursor--
}

func (e *lineEditor) deleteForward() {
	if e.cursor >= len(e.text) {
		return
	}
	e.text = append(e.text[:e.cursor], e.text[e.cursor+1:]...)
}

func (e *lineEditor) left() {
	if e.cursor > 0 {
		e.cursor--
	}
}

func (e *lineEditor) right() {
	if e.cursor < len(e.text) {
		e.cursor++
	}
}

// setHistory installs the history list this editor navigates. Called once
// per command send so Up/Down always walk the latest history.
func (e *lineEditor) setHistory(h []string) {
	e.history = h
	e.historyIdx = len(h)
}

// up navigates one entry back in history. The first Up press stashes the
// in-progress buffer into unsavedTail so Down past the end can restore it.
func (e *lineEditor) up() {
	if len(e.history) == 0 {
		return
	}
	if e.historyIdx == len(e.history) {
		e.unsavedTail = append([]rune{}, e.text...)
	}
	if e.historyIdx > 0 {
		e.historyIdx--
	}
	e.load([]rune(e.history[e.historyIdx]))
}

// down navigates one entry forward in history, restoring the floating
// unsaved tail slot once past the newest entry.
func (e *lineEditor) down() {
	if e.historyIdx >= len(e.history) {
		return
	}
	e.historyIdx++
	if e.historyIdx == len(e.history) {
		e.load(e.unsavedTail)
		return
	}
	e.load([]rune(e.history[e.historyIdx]))
}

func (e *lineEditor) load(text []rune) {
	e.text = append([]rune{}, text...)
	e.cursor = len(e.text)
}

// commit returns the composed command and clears the buffer for the next
// one.
func (e *lineEditor) commit() string {
	s := e.String()
	e.reset()
	return s
}

// cancel clears the buffer (Ctrl-C) and returns empty.
func (e *lineEditor) cancel() string {
	e.reset()
	return ""
}
