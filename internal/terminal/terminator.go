// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

package terminal

import (
	"fmt"
	"strings"

	"github.com/kazwalker/elmterm/internal/hexcodec"
)

// ParseTerminator implements spec.md §6's terminator grammar: the bytes
// the engine appends to every outgoing command before enqueuing it for
// the transport.
func ParseTerminator(s string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cr", "\r", "carriage-return":
		return []byte{0x0D}, nil
	case "lf", "\n":
		return []byte{0x0A}, nil
	case "crlf", "\r\n":
		return []byte{0x0D, 0x0A}, nil
	case "none":
		return []byte{}, nil
	}
	if hexPart, ok := strings.CutPrefix(s, "hex:"); ok {
		b := hexcodec.ParseStrict(hexPart)
		if b == nil {
			return nil, fmt.Errorf("invalid hex terminator %q", s)
		}
		return b, nil
	}
	return []byte(s), nil
}
