// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

package terminal

import (
	"strings"
	"sync"
)

// echoCell is the one-slot deduplicator spec.md §3 calls the "sent-command
// echo cell": set at send time, cleared on the first incoming line whose
// trimmed/uppercased content matches. It assumes the adapter echoes at
// most once, before any substantive response; elmterm never adds an
// explicit timeout for the ATE0 case where no echo ever arrives — the cell
// just sits armed until overwritten by the next send.
type echoCell struct {
	mu  sync.Mutex
	cmd string // normalized (trimmed, uppercased); empty means unarmed
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// arm sets the cell to the given outgoing command.
func (c *echoCell) arm(cmd string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmd = normalize(cmd)
}

// suppress reports whether line is the armed echo, and if so clears the
// cell. Only the first matching line is suppressed; subsequent duplicates
// pass through untouched.
func (c *echoCell) suppress(line string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == "" {
		return false
	}
	if normalize(line) != c.cmd {
		return false
	}
	c.cmd = ""
	return true
}
