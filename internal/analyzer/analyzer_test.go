package analyzer

import (
	"strings"
	"testing"
)

func hasDetail(details []string, substr string) bool {
	for _, d := range details {
		if strings.Contains(d, substr) {
			return true
		}
	}
	return false
}

func TestOutgoingAT(t *testing.T) {
	a := New()
	ann := a.AnnotateOutgoing("atz")
	if ann == nil {
		t.Fatal("expected annotation")
	}
	if !strings.Contains(ann.Headline, "ATZ") {
		t.Errorf("headline = %q, want to contain ATZ", ann.Headline)
	}
}

func TestOutgoingATLongestPrefix(t *testing.T) {
	a := New()
	ann := a.AnnotateOutgoing("ATSP0")
	if ann == nil || !hasDetail(ann.Details, "Set protocol to auto") {
		t.Fatalf("expected longest-match ATSP0, got %+v", ann)
	}
}

func TestOutgoingST(t *testing.T) {
	a := New()
	ann := a.AnnotateOutgoing("sti")
	if ann == nil || !strings.Contains(ann.Headline, "STI") {
		t.Fatalf("expected STN command annotation, got %+v", ann)
	}
}

// Scenario 1 from spec.md §8.
func TestOutgoingOBDRequest(t *testing.T) {
	a := New()
	ann := a.AnnotateOutgoing("0100")
	if ann == nil {
		t.Fatal("expected annotation")
	}
	if ann.Headline != "OBD-II request (mode 01)" {
		t.Errorf("headline = %q", ann.Headline)
	}
	if !hasDetail(ann.Details, "Hex: 01 00") {
		t.Errorf("details = %v, missing Hex", ann.Details)
	}
	if !hasDetail(ann.Details, "Show current data") {
		t.Errorf("details = %v, missing mode description", ann.Details)
	}
	if !hasDetail(ann.Details, "PID 00") {
		t.Errorf("details = %v, missing PID line", ann.Details)
	}
}

func TestOutgoingUDSRequest(t *testing.T) {
	a := New()
	ann := a.AnnotateOutgoing("221234")
	if ann == nil {
		t.Fatal("expected annotation")
	}
	if ann.Headline != "UDS/KWP request (mode 22)" {
		t.Errorf("headline = %q", ann.Headline)
	}
	if !hasDetail(ann.Details, "Read data by identifier") {
		t.Errorf("details = %v", ann.Details)
	}
}

func TestOutgoingUnrecognized(t *testing.T) {
	a := New()
	if ann := a.AnnotateOutgoing("hello world"); ann != nil {
		t.Errorf("expected nil, got %+v", ann)
	}
	if ann := a.AnnotateOutgoing(""); ann != nil {
		t.Errorf("expected nil for empty line, got %+v", ann)
	}
}

// Scenario 2 from spec.md §8.
func TestIncomingOBDResponse(t *testing.T) {
	a := New()
	ann := a.AnnotateIncoming("7E8 41 00 BE 1F A8 13")
	if ann == nil {
		t.Fatal("expected annotation")
	}
	if ann.Headline != "OBD-II response" {
		t.Errorf("headline = %q", ann.Headline)
	}
	if !hasDetail(ann.Details, "Hex: 41 00 BE 1F A8 13") {
		t.Errorf("details = %v", ann.Details)
	}
	if !hasDetail(ann.Details, "ASCII: A") {
		t.Errorf("details = %v", ann.Details)
	}
	if !hasDetail(ann.Details, "Mode 01: Show current data") {
		t.Errorf("details = %v", ann.Details)
	}
}

// Scenario 3 from spec.md §8.
func TestIncomingNegativeResponse(t *testing.T) {
	a := New()
	ann := a.AnnotateIncoming("7E8 7F 10 12")
	if ann == nil {
		t.Fatal("expected annotation")
	}
	if ann.Headline != "Negative Response (NRC 0x12)" {
		t.Errorf("headline = %q", ann.Headline)
	}
	if !hasDetail(ann.Details, "Service 0x10 failed") {
		t.Errorf("details = %v", ann.Details)
	}
	if !hasDetail(ann.Details, "Sub-function not supported") {
		t.Errorf("details = %v", ann.Details)
	}
	if ann.Severity != SeverityWarning {
		t.Errorf("severity = %v, want warning", ann.Severity)
	}
}

// Scenario 4 from spec.md §8: three-frame ISO-TP reassembly ending in a VIN.
func TestIncomingVINReassembly(t *testing.T) {
	a := New()

	ann := a.AnnotateIncoming("7E8 10 14 49 02 01 57 41 55")
	if ann == nil || ann.Headline != "First Frame" {
		t.Fatalf("expected First Frame annotation, got %+v", ann)
	}

	ann = a.AnnotateIncoming("7E8 21 5A 5A 5A 38 54 38 42")
	if ann == nil || ann.Headline != "Consecutive Frame" {
		t.Fatalf("expected Consecutive Frame progress annotation, got %+v", ann)
	}

	ann = a.AnnotateIncoming("7E8 22 41 30 33 34 33 37 34")
	if ann == nil || ann.Headline != "VIN response" {
		t.Fatalf("expected VIN response annotation, got %+v", ann)
	}
	if !hasDetail(ann.Details, "WAUZZZ8T8BA034374") {
		t.Errorf("details = %v, missing VIN", ann.Details)
	}
}

// Scenario 5 from spec.md §8.
func TestIncomingOrphanCF(t *testing.T) {
	a := New()
	ann := a.AnnotateIncoming("7E8 21 AA BB")
	if ann == nil || ann.Severity != SeverityWarning {
		t.Fatalf("expected warning annotation, got %+v", ann)
	}
	if !strings.Contains(strings.ToLower(ann.Headline), "orphan") {
		t.Errorf("headline = %q, want to mention orphan", ann.Headline)
	}
}

// Scenario 6 from spec.md §8.
func TestIncomingSequenceError(t *testing.T) {
	a := New()
	a.AnnotateIncoming("7E8 10 14 49 02 01 57 41 55")
	ann := a.AnnotateIncoming("7E8 22 5A 5A 5A")
	if ann == nil {
		t.Fatal("expected annotation")
	}
	if !hasDetail(ann.Details, "Expected sequence 1, got 2") {
		t.Errorf("details = %v", ann.Details)
	}
}

func TestIncomingNoData(t *testing.T) {
	a := New()
	ann := a.AnnotateIncoming("NO DATA")
	if ann == nil || ann.Headline != "Adapter status" {
		t.Fatalf("expected adapter status annotation, got %+v", ann)
	}
	if !hasDetail(ann.Details, "No ECU replied") {
		t.Errorf("details = %v", ann.Details)
	}
}

func TestIncomingSearching(t *testing.T) {
	a := New()
	ann := a.AnnotateIncoming("SEARCHING...")
	if ann == nil || !hasDetail(ann.Details, "still trying to lock") {
		t.Fatalf("expected searching status annotation, got %+v", ann)
	}
}

func TestIncomingOK(t *testing.T) {
	a := New()
	ann := a.AnnotateIncoming("OK")
	if ann == nil || ann.Headline != "Adapter acknowledged command" {
		t.Fatalf("expected OK annotation, got %+v", ann)
	}
}

func TestIncomingUnrecognized(t *testing.T) {
	a := New()
	if ann := a.AnnotateIncoming(""); ann != nil {
		t.Errorf("expected nil for empty line, got %+v", ann)
	}
	if ann := a.AnnotateIncoming("?"); ann != nil {
		t.Errorf("expected nil for single non-hex char, got %+v", ann)
	}
}

// Annotator must be total: no input string produces a panic.
func TestAnnotatorIsTotal(t *testing.T) {
	inputs := []string{
		"", " ", "\t", "AT", "ST", "A", "ZZZZ", "7F", "7F00", "10", "20",
		"NO DATA but also 41 00", "SEARCHING but also 7F 10 12",
		strings.Repeat("FF", 5000),
		"18DAF110" + strings.Repeat("41", 100),
	}
	a := New()
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("AnnotateOutgoing(%q) panicked: %v", in, r)
				}
			}()
			a.AnnotateOutgoing(in)
		}()
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("AnnotateIncoming(%q) panicked: %v", in, r)
				}
			}()
			a.AnnotateIncoming(in)
		}()
	}
}

// First-match-wins ordering: "NO DATA" must never be decoded as hex.
func TestFirstMatchWinsOrdering(t *testing.T) {
	a := New()
	ann := a.AnnotateIncoming("NO DATA")
	if ann.Headline != "Adapter status" {
		t.Fatalf("NO DATA must classify as adapter status even though it contains hex-valid characters, got %+v", ann)
	}
}

func TestResetClearsReassembly(t *testing.T) {
	a := New()
	a.AnnotateIncoming("7E8 10 14 49 02 01 57 41 55")
	a.Reset()
	ann := a.AnnotateIncoming("7E8 21 5A 5A 5A 38 54 38 42")
	if ann == nil || ann.Severity != SeverityWarning {
		t.Fatalf("expected orphan CF warning after reset, got %+v", ann)
	}
}
