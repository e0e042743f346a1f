// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

// Package history implements the command history store spec.md §3 and §6
// describe: an ordered, depth-bounded list of previously committed
// commands, loaded best-effort on start and rewritten atomically on each
// append and on clean exit.
package history

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Store holds the in-memory history list and knows how to persist it.
// Touched only by the REPL task per spec.md §5.
type Store struct {
	path    string
	depth   int
	entries []string
	dirty   bool
}

// New returns a Store bounded to depth entries, backed by path. depth <= 0
// means unbounded.
func New(path string, depth int) *Store {
	return &Store{path: path, depth: depth}
}

// Load reads the history file if it exists. A missing file is not an
// error; any other I/O error is returned, and the caller is expected to
// log it as a warning rather than abort — spec.md §7 classifies history
// I/O errors as warn-only, never fatal.
func (s *Store) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	s.entries = s.bound(entries)
	return nil
}

// Entries returns the current in-memory history, newest last.
func (s *Store) Entries() []string {
	return s.entries
}

// Append adds a non-empty command to the end of history, trimming the
// oldest entries past depth.
func (s *Store) Append(cmd string) {
	if strings.TrimSpace(cmd) == "" {
		return
	}
	s.entries = s.bound(append(s.entries, cmd))
	s.dirty = true
}

func (s *Store) bound(entries []string) []string {
	if s.depth <= 0 || len(entries) <= s.depth {
		return entries
	}
	return entries[len(entries)-s.depth:]
}

// Save atomically rewrites the history file with the current entries:
// write to a temp file in the same directory, then rename over the
// target, so a crash mid-write never corrupts the existing file.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".elmterm-history-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, e := range s.entries {
		if _, err := w.WriteString(e + "\n"); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	s.dirty = false
	return nil
}

// Dirty reports whether there are unsaved appends.
func (s *Store) Dirty() bool {
	return s.dirty
}
