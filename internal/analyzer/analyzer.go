// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

// Package analyzer classifies a single textual adapter line — one the
// operator sent, or one the adapter sent back — into an Annotation record:
// AT/ST command recognition, OBD-II/UDS/KWP mode and PID decoding,
// negative-response decoding, and ISO-TP reassembly via internal/isotp.
//
// Annotator is total: AnnotateOutgoing and AnnotateIncoming never panic,
// and absorb malformed input by returning a nil Annotation rather than an
// error.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/kazwalker/elmterm/internal/hexcodec"
	"github.com/kazwalker/elmterm/internal/isotp"
)

// Analyzer holds the one piece of state the spec calls out as scoped to a
// session: the in-flight ISO-TP reassembly. Reset on reconnect.
type Analyzer struct {
	reassembler *isotp.Reassembler
}

// New returns an Analyzer with an idle reassembler.
func New() *Analyzer {
	return &Analyzer{reassembler: isotp.New()}
}

// Reset clears in-flight ISO-TP reassembly state, for use on reconnect.
func (a *Analyzer) Reset() {
	a.reassembler.Reset()
}

// AnnotateOutgoing classifies a line the user is about to send. Returns nil
// if the line matches none of the recognized outgoing shapes.
func (a *Analyzer) AnnotateOutgoing(line string) *Annotation {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	upper := strings.ToUpper(trimmed)

	if strings.HasPrefix(upper, "AT") {
		return annotateTable(Outgoing, "ELM adapter command", upper, atCommands)
	}
	if strings.HasPrefix(upper, "ST") {
		return annotateTable(Outgoing, "STN command", upper, stCommands)
	}

	if b := hexcodec.ParseStrict(trimmed); b != nil && len(b) > 0 {
		return annotateOutgoingHex(b)
	}

	return nil
}

func annotateTable(dir Direction, label, upper string, table map[string]string) *Annotation {
	key, desc := longestPrefixMatch(upper, table)
	if key == "" {
		return info(dir, fmt.Sprintf("%s %s", label, upper))
	}
	return info(dir, fmt.Sprintf("%s %s", label, key), desc)
}

func longestPrefixMatch(upper string, table map[string]string) (string, string) {
	best := ""
	for key := range table {
		if strings.HasPrefix(upper, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return "", ""
	}
	return best, table[best]
}

func annotateOutgoingHex(b []byte) *Annotation {
	mode := b[0]
	protocol := "OBD-II"
	if mode > 0x0F {
		protocol = "UDS/KWP"
	}

	details := []string{fmt.Sprintf("Hex: %s", hexcodec.Format(b))}
	if desc, ok := modeDescription(mode); ok {
		details = append(details, desc)
	}
	if protocol == "OBD-II" && len(b) >= 2 {
		pid := b[1]
		if info, ok := pidTable[pid]; ok {
			details = append(details, fmt.Sprintf("PID %02X: %s", pid, info.name))
		} else {
			details = append(details, fmt.Sprintf("PID %02X", pid))
		}
	}

	headline := fmt.Sprintf("%s request (mode %02X)", protocol, mode)
	return info(Outgoing, headline, details...)
}

func modeDescription(mode byte) (string, bool) {
	if mode <= 0x0F {
		desc, ok := obdModes[mode]
		return desc, ok
	}
	desc, ok := udsModes[mode]
	return desc, ok
}

// AnnotateIncoming classifies a line the adapter sent. Returns nil if the
// line matches none of the recognized incoming shapes.
func (a *Analyzer) AnnotateIncoming(line string) *Annotation {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	upper := strings.ToUpper(trimmed)

	switch {
	case strings.Contains(upper, "NO DATA"):
		return info(Incoming, "Adapter status", "No ECU replied to this request")
	case strings.Contains(upper, "SEARCHING"):
		return info(Incoming, "Adapter status", "Adapter is still trying to lock on a protocol")
	case upper == "OK":
		return info(Incoming, "Adapter acknowledged command")
	}

	b := hexcodec.ParseResponse(trimmed)
	if b == nil || len(b) < 2 {
		return nil
	}

	if b[0] == 0x7F && len(b) >= 3 {
		service := b[1]
		nrc := b[2]
		return warn(Incoming,
			fmt.Sprintf("Negative Response (NRC 0x%02X)", nrc),
			fmt.Sprintf("Service 0x%02X failed", service),
			nrcDescription(nrc),
		)
	}

	switch b[0] >> 4 {
	case 0x1:
		return a.handleFirstFrame(b)
	case 0x2:
		return a.handleConsecutiveFrame(b)
	}

	return annotatePositiveResponse(b)
}

func (a *Analyzer) handleFirstFrame(b []byte) *Annotation {
	if len(b) < 2 {
		return nil
	}
	ev := a.reassembler.FeedFirstFrame(b)
	return info(Incoming,
		"First Frame",
		fmt.Sprintf("Reassembling ISO-TP message (1/%d)", ev.TotalLength),
	)
}

func (a *Analyzer) handleConsecutiveFrame(b []byte) *Annotation {
	if len(b) < 1 {
		return nil
	}
	ev := a.reassembler.FeedConsecutiveFrame(b)
	switch ev.Kind {
	case isotp.EventOrphanCF:
		return warn(Incoming, "Orphaned Consecutive Frame", "No First Frame reassembly in progress")
	case isotp.EventSequenceError:
		return warn(Incoming, "ISO-TP sequence error",
			fmt.Sprintf("Expected sequence %d, got %d", ev.ExpectedSeq, ev.GotSeq))
	case isotp.EventComplete:
		return a.annotateCompleteMessage(ev.Bytes)
	case isotp.EventProgress:
		return info(Incoming, "Consecutive Frame",
			fmt.Sprintf("Reassembling ISO-TP message (%d/%d)", ev.BufferLength, ev.TotalLength))
	}
	return nil
}

func (a *Analyzer) annotateCompleteMessage(m []byte) *Annotation {
	if len(m) >= 3 && m[0] == 0x49 && m[1] == 0x02 {
		vin := hexcodec.ASCII(m[3:])
		return info(Incoming, "VIN response", fmt.Sprintf("VIN: %s", vin),
			fmt.Sprintf("Hex: %s", hexcodec.Format(m)))
	}
	return info(Incoming, "Complete ISO-TP message",
		fmt.Sprintf("Hex: %s", hexcodec.Format(m)),
		fmt.Sprintf("ASCII: %s", hexcodec.ASCII(m)),
	)
}

func annotatePositiveResponse(b []byte) *Annotation {
	mode := b[0] & 0x3F
	pid := b[1]
	payload := b[2:]

	protocol := "OBD-II"
	var modeTable map[byte]string
	if mode <= 0x0F {
		modeTable = obdModes
	} else {
		protocol = "UDS/KWP"
		modeTable = udsModes
	}

	details := []string{
		fmt.Sprintf("Hex: %s", hexcodec.Format(b)),
		fmt.Sprintf("ASCII: %s", hexcodec.ASCII(b)),
	}
	if desc, ok := modeTable[mode]; ok {
		details = append(details, fmt.Sprintf("Mode %02X: %s", mode, desc))
	}
	if pi, ok := pidTable[pid]; ok {
		if formatted := pi.format(payload); formatted != "" {
			details = append(details, fmt.Sprintf("%s: %s", pi.name, formatted))
		}
	}

	return info(Incoming, fmt.Sprintf("%s response", protocol), details...)
}
