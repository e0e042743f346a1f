// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

// Package lineframer demarcates an ELM327/STN adapter's raw byte stream
// into complete textual lines, tolerating the adapter's mixed CR/LF
// terminators and its '>' prompt bytes.
package lineframer

const (
	prompt = 0x3E // '>'
	cr     = 0x0D
	lf     = 0x0A
)

// Framer retains a partial line across Feed calls.
type Framer struct {
	buf []byte
}

// New returns an empty Framer.
func New() *Framer {
	return &Framer{}
}

// Feed appends data to the internal buffer and returns zero or more
// complete lines extracted from it. Partial trailing data, and any
// terminator/prompt bytes consumed while framing, are not part of the
// returned lines; a later Feed call may complete a line begun here.
func (f *Framer) Feed(data []byte) [][]byte {
	f.buf = append(f.buf, data...)

	var lines [][]byte
	for {
		// Consume leading prompt bytes.
		i := 0
		for i < len(f.buf) && f.buf[i] == prompt {
			i++
		}
		f.buf = f.buf[i:]

		termIdx := indexOfTerminator(f.buf)
		if termIdx < 0 {
			break
		}

		line := f.buf[:termIdx]
		rest := f.buf[termIdx:]

		j := 0
		for j < len(rest) && (rest[j] == cr || rest[j] == lf) {
			j++
		}
		f.buf = rest[j:]

		if len(line) > 0 {
			lines = append(lines, append([]byte{}, line...))
		}
	}

	return lines
}

func indexOfTerminator(buf []byte) int {
	for i, b := range buf {
		if b == cr || b == lf {
			return i
		}
	}
	return -1
}
