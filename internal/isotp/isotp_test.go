package isotp

import (
	"bytes"
	"testing"
)

func TestFirstFrameStartsReassembly(t *testing.T) {
	r := New()
	// 10 14 -> total length 0x014 = 20
	ev := r.FeedFirstFrame([]byte{0x10, 0x14, 0x49, 0x02, 0x01, 0x57, 0x41, 0x55})
	if ev.Kind != EventFirstFrame {
		t.Fatalf("kind = %v, want EventFirstFrame", ev.Kind)
	}
	if ev.TotalLength != 20 {
		t.Errorf("TotalLength = %d, want 20", ev.TotalLength)
	}
	if !r.Active() {
		t.Errorf("expected reassembler to be active")
	}
}

func TestFullVINReassembly(t *testing.T) {
	r := New()
	r.FeedFirstFrame([]byte{0x10, 0x14, 0x49, 0x02, 0x01, 0x57, 0x41, 0x55})

	ev := r.FeedConsecutiveFrame([]byte{0x21, 0x5A, 0x5A, 0x5A, 0x38, 0x54, 0x38, 0x42})
	if ev.Kind != EventProgress {
		t.Fatalf("kind = %v, want EventProgress", ev.Kind)
	}
	if ev.BufferLength != 13 {
		t.Errorf("BufferLength = %d, want 13", ev.BufferLength)
	}

	ev = r.FeedConsecutiveFrame([]byte{0x22, 0x41, 0x30, 0x33, 0x34, 0x33, 0x37, 0x34})
	if ev.Kind != EventComplete {
		t.Fatalf("kind = %v, want EventComplete", ev.Kind)
	}
	want := []byte("I\x02\x01WAUZZZ8T8BA034374")
	if !bytes.Equal(ev.Bytes, want) {
		t.Errorf("Bytes = %q, want %q", ev.Bytes, want)
	}
	if r.Active() {
		t.Errorf("expected reassembler to be idle after completion")
	}
}

func TestOrphanCF(t *testing.T) {
	r := New()
	ev := r.FeedConsecutiveFrame([]byte{0x21, 0xAA, 0xBB})
	if ev.Kind != EventOrphanCF {
		t.Errorf("kind = %v, want EventOrphanCF", ev.Kind)
	}
	if r.Active() {
		t.Errorf("orphan CF must not start a reassembly")
	}
}

func TestSequenceError(t *testing.T) {
	r := New()
	r.FeedFirstFrame([]byte{0x10, 0x14, 0x49, 0x02, 0x01, 0x57, 0x41, 0x55})

	ev := r.FeedConsecutiveFrame([]byte{0x22, 0x5A, 0x5A, 0x5A})
	if ev.Kind != EventSequenceError {
		t.Fatalf("kind = %v, want EventSequenceError", ev.Kind)
	}
	if ev.ExpectedSeq != 1 || ev.GotSeq != 2 {
		t.Errorf("ExpectedSeq=%d GotSeq=%d, want 1, 2", ev.ExpectedSeq, ev.GotSeq)
	}
	if r.Active() {
		t.Errorf("reassembly must be reset after a sequence error")
	}
}

func TestFirstFrameWhileCollectingSilentlyRestarts(t *testing.T) {
	r := New()
	r.FeedFirstFrame([]byte{0x10, 0x14, 0x49, 0x02, 0x01})
	r.FeedConsecutiveFrame([]byte{0x21, 0xAA, 0xBB, 0xCC})

	ev := r.FeedFirstFrame([]byte{0x10, 0x05, 0x62, 0x00})
	if ev.Kind != EventFirstFrame || ev.TotalLength != 5 {
		t.Fatalf("expected fresh FirstFrame event with length 5, got %+v", ev)
	}
	if ev.BufferLength != 2 {
		t.Errorf("BufferLength = %d, want 2 (only new FF payload)", ev.BufferLength)
	}
}

func TestSequenceWrapsMod16(t *testing.T) {
	r := New()
	r.FeedFirstFrame([]byte{0x14, 0x00, 0, 0, 0, 0, 0}) // totalLength 0x400=1024, 5 payload bytes
	seq := 1
	for i := 0; i < 20; i++ {
		ev := r.FeedConsecutiveFrame([]byte{byte(0x20 | seq), 1, 2, 3, 4, 5, 6})
		if ev.Kind == EventComplete {
			break
		}
		if ev.Kind != EventProgress {
			t.Fatalf("unexpected event kind %v at iteration %d", ev.Kind, i)
		}
		seq = (seq + 1) % 16
	}
}
