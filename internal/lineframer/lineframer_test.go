package lineframer

import (
	"math/rand"
	"testing"
)

func TestBasicLine(t *testing.T) {
	f := New()
	lines := f.Feed([]byte("0100\r"))
	if len(lines) != 1 || string(lines[0]) != "0100" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestPartialLineAcrossFeeds(t *testing.T) {
	f := New()
	if lines := f.Feed([]byte("41 0")); len(lines) != 0 {
		t.Fatalf("expected no lines yet, got %v", lines)
	}
	lines := f.Feed([]byte("0 BE\r"))
	if len(lines) != 1 || string(lines[0]) != "41 00 BE" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestMixedTerminatorRuns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"crlf", "AAA\r\nBBB\r\n", []string{"AAA", "BBB"}},
		{"lfcr", "AAA\n\rBBB\n\r", []string{"AAA", "BBB"}},
		{"crcr", "AAA\r\rBBB\r\r", []string{"AAA", "BBB"}},
		{"lflf", "AAA\n\nBBB\n\n", []string{"AAA", "BBB"}},
		{"long run", "AAA\r\r\r\n\n\nBBB\r", []string{"AAA", "BBB"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			lines := f.Feed([]byte(tt.input))
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d lines %v, want %v", len(lines), lines, tt.want)
			}
			for i, l := range lines {
				if string(l) != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, l, tt.want[i])
				}
			}
		})
	}
}

func TestEmptyLinesDiscarded(t *testing.T) {
	f := New()
	lines := f.Feed([]byte("\r\rAAA\r\r\rBBB\r"))
	if len(lines) != 2 || string(lines[0]) != "AAA" || string(lines[1]) != "BBB" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestPromptBytesConsumed(t *testing.T) {
	f := New()
	lines := f.Feed([]byte(">>>0100\r>"))
	if len(lines) != 1 || string(lines[0]) != "0100" {
		t.Fatalf("lines = %v", lines)
	}
	// trailing lone '>' is consumed with nothing left to buffer
	lines = f.Feed([]byte("\r"))
	if len(lines) != 0 {
		t.Fatalf("expected no further lines, got %v", lines)
	}
}

// TestConservationInvariant checks property 1 from spec.md §8: for any byte
// sequence fed to the Framer, the concatenation of emitted lines, the
// surviving buffer, and the dropped prompt/terminator bytes equals the
// input, by independently classifying each input byte and reconciling
// counts against the Framer's actual output.
func TestConservationInvariant(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	alphabet := []byte("01234> \r\nAB")

	for trial := 0; trial < 200; trial++ {
		n := rnd.Intn(40)
		input := make([]byte, n)
		for i := range input {
			input[i] = alphabet[rnd.Intn(len(alphabet))]
		}

		f := New()
		lines := f.Feed(input)

		var reconstructed []byte
		for _, l := range lines {
			reconstructed = append(reconstructed, l...)
		}
		reconstructed = append(reconstructed, f.buf...)

		// A '>' is a dropped prompt byte only at the start of a line (input
		// start, after a terminator, or after another leading '>'); a '>'
		// inside a line is content.
		contentBytes := 0
		atLineStart := true
		for _, b := range input {
			switch {
			case b == cr || b == lf:
				atLineStart = true
			case b == prompt && atLineStart:
			default:
				contentBytes++
				atLineStart = false
			}
		}
		if len(reconstructed) != contentBytes {
			t.Fatalf("trial %d: reconstructed %d bytes, want %d non-framing input bytes (input=%q)",
				trial, len(reconstructed), contentBytes, input)
		}
	}
}
