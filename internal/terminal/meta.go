// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

package terminal

import (
	"fmt"
	"strconv"
	"strings"
)

// metaResult tells the engine what a meta command wants done after being
// handled: nothing further, a shutdown request, or text to render.
type metaResult struct {
	lines    []string
	shutdown bool
	isError  bool
}

const metaHelpText = `:help               show this list
:history [n]        show last n history entries (default 20)
:clear              clear the screen
:analyzer [on|off]  enable, disable, or toggle annotation
:save               persist history immediately
:quit / :exit       request shutdown`

// handleMeta dispatches a line beginning with ':' or a bare "quit"/"exit".
// Returns ok=false if line was not a meta command at all.
func (e *Engine) handleMeta(line string) (metaResult, bool) {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)

	if lower == "quit" || lower == "exit" {
		return metaResult{shutdown: true}, true
	}

	if !strings.HasPrefix(trimmed, ":") {
		return metaResult{}, false
	}

	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return metaResult{lines: []string{"unknown meta command"}, isError: true}, true
	}

	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "help":
		return metaResult{lines: strings.Split(metaHelpText, "\n")}, true
	case "history":
		return e.metaHistory(args), true
	case "clear":
		return metaResult{lines: []string{"\x1b[2J\x1b[H"}}, true
	case "analyzer":
		return e.metaAnalyzer(args), true
	case "save":
		if err := e.history.Save(); err != nil {
			return metaResult{lines: []string{fmt.Sprintf("history save failed: %v", err)}, isError: true}, true
		}
		return metaResult{lines: []string{"history saved"}}, true
	case "quit", "exit":
		return metaResult{shutdown: true}, true
	default:
		return metaResult{lines: []string{fmt.Sprintf("unknown meta command: %s", cmd)}, isError: true}, true
	}
}

func (e *Engine) metaHistory(args []string) metaResult {
	n := 20
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	entries := e.history.Entries()
	start := len(entries) - n
	if start < 0 {
		start = 0
	}
	var lines []string
	for i := start; i < len(entries); i++ {
		lines = append(lines, fmt.Sprintf("%4d  %s", i+1, entries[i]))
	}
	if len(lines) == 0 {
		lines = []string{"(no history)"}
	}
	return metaResult{lines: lines}
}

func (e *Engine) metaAnalyzer(args []string) metaResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(args) == 0 {
		e.analyzerEnabled = !e.analyzerEnabled
	} else {
		switch strings.ToLower(args[0]) {
		case "on":
			e.analyzerEnabled = true
		case "off":
			e.analyzerEnabled = false
		default:
			return metaResult{lines: []string{"usage: :analyzer [on|off]"}, isError: true}
		}
	}
	state := "off"
	if e.analyzerEnabled {
		state = "on"
	}
	return metaResult{lines: []string{fmt.Sprintf("analyzer %s", state)}}
}
