package util

import "testing"

func TestSanitizeTextDropsNulAndControls(t *testing.T) {
	in := "abstract\x00 with\x01 junk\n\tkept"
	got := SanitizeText(in)
	want := "abstract with junk\n\tkept"
	if got != want {
		t.Fatalf("SanitizeText: got %q want %q", got, want)
	}
}

func TestClearEmpty(t *testing.T) {
	if got := ClearEmpty([]string{" a ", "", "  ", "b"}); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected result: %v", got)
	}
	if got := ClearEmpty([]string{"", " "}); got != nil {
		t.Fatalf("expected nil for all-empty input, got %v", got)
	}
}

func TestSplitTrimmed(t *testing.T) {
	got := SplitTrimmed("climate; energy ;; policy", ";")
	if len(got) != 3 || got[0] != "climate" || got[1] != "energy" || got[2] != "policy" {
		t.Fatalf("unexpected split: %v", got)
	}
	if SplitTrimmed("", ";") != nil {
		t.Fatal("expected nil for empty input")
	}
}
