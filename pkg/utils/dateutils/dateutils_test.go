package dateutils

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2024-03-01", "2024-03-01", true},
		{"20240301", "2024-03-01", true},
		{"2024-03-01 10:00:00", "2024-03-01", true},
		{"", "", false},
		{"March 1", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeDate(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeDate(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDateRange(t *testing.T) {
	start, _ := ParseDate("2024-02-27")
	end, _ := ParseDate("2024-03-02")

	got := DateRange(start, end)
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(got) != len(want) {
		t.Fatalf("DateRange length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DateRange[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if inverted := DateRange(end, start); len(inverted) != 0 {
		t.Errorf("inverted range should be empty, got %v", inverted)
	}
}

func TestParseDateRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "2024/01/01", "1999-01-01", "2024-13-01"} {
		if _, err := ParseDate(input); err == nil {
			t.Errorf("ParseDate(%q) expected error", input)
		}
	}
}

func TestDefaultRange(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	start, end := DefaultRange(today)
	if start != "2024-03-03" || end != "2024-03-10" {
		t.Errorf("DefaultRange = (%s, %s), want (2024-03-03, 2024-03-10)", start, end)
	}
}
