package analysis

import (
	"errors"
	"testing"
)

func TestCalculateWindows(t *testing.T) {
	ws, err := CalculateWindows("2024-01-01", "2024-03-01")
	if err != nil {
		t.Fatalf("CalculateWindows failed: %v", err)
	}

	if len(ws.All) != 61 {
		t.Errorf("All length = %d, want 61", len(ws.All))
	}
	assertWindow(t, "yesterday", ws.Yesterday, "2024-02-29", "2024-02-29", 1)
	assertWindow(t, "day before", ws.DayBefore, "2024-02-28", "2024-02-28", 1)
	assertWindow(t, "last7", ws.Last7, "2024-02-23", "2024-02-29", 7)
	assertWindow(t, "prev7", ws.Prev7, "2024-02-16", "2024-02-22", 7)
	assertWindow(t, "last30", ws.Last30, "2024-01-31", "2024-02-29", 30)
	assertWindow(t, "prev30", ws.Prev30, "2024-01-01", "2024-01-30", 30)
}

func TestCalculateWindowsShortRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		last7      int
		prev7      int
		last30     int
		prev30     int
		yesterday  int
		dayBefore  int
	}{
		{"single day", "2024-03-10", "2024-03-10", 0, 0, 0, 0, 0, 0},
		{"two days", "2024-03-09", "2024-03-10", 1, 0, 1, 0, 1, 0},
		{"eight days", "2024-03-03", "2024-03-10", 7, 0, 7, 0, 1, 1},
		{"ten days", "2024-03-01", "2024-03-10", 7, 2, 9, 0, 1, 1},
		{"fifteen days", "2024-02-25", "2024-03-10", 7, 7, 14, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, err := CalculateWindows(tt.start, tt.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := []int{len(ws.Last7), len(ws.Prev7), len(ws.Last30), len(ws.Prev30), len(ws.Yesterday), len(ws.DayBefore)}
			want := []int{tt.last7, tt.prev7, tt.last30, tt.prev30, tt.yesterday, tt.dayBefore}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("window lengths = %v, want %v", got, want)
					break
				}
			}
		})
	}
}

func TestLast7NeverIncludesEnd(t *testing.T) {
	ranges := [][2]string{
		{"2024-01-01", "2024-01-01"},
		{"2024-01-01", "2024-01-05"},
		{"2024-01-01", "2024-01-31"},
		{"2023-12-01", "2024-03-01"},
	}

	for _, r := range ranges {
		ws, err := CalculateWindows(r[0], r[1])
		if err != nil {
			t.Fatalf("CalculateWindows(%s, %s): %v", r[0], r[1], err)
		}
		if len(ws.Last7) > 7 {
			t.Errorf("%v: last7 has %d days", r, len(ws.Last7))
		}
		for _, d := range ws.Last7 {
			if d == r[1] {
				t.Errorf("%v: last7 includes end date", r)
			}
			if d < r[0] {
				t.Errorf("%v: last7 extends before start: %s", r, d)
			}
		}
		if len(ws.Last7) == 0 && len(ws.Prev7) != 0 {
			t.Errorf("%v: prev7 must be empty when last7 is empty", r)
		}
		if len(ws.Last30) == 0 && len(ws.Prev30) != 0 {
			t.Errorf("%v: prev30 must be empty when last30 is empty", r)
		}
	}
}

func TestCalculateWindowsInvalid(t *testing.T) {
	tests := [][2]string{
		{"2024-03-10", "2024-03-01"},
		{"not-a-date", "2024-03-01"},
		{"2024-03-01", ""},
	}
	for _, tt := range tests {
		_, err := CalculateWindows(tt[0], tt[1])
		if err == nil {
			t.Errorf("CalculateWindows(%q, %q) expected error", tt[0], tt[1])
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) || !errors.Is(err, ErrInvalidDateRange) {
			t.Errorf("expected ValidationError, got %T: %v", err, err)
		}
	}
}

func assertWindow(t *testing.T, name string, w []string, first, last string, n int) {
	t.Helper()
	if len(w) != n {
		t.Fatalf("%s length = %d, want %d", name, len(w), n)
	}
	if w[0] != first || w[len(w)-1] != last {
		t.Errorf("%s = %s..%s, want %s..%s", name, w[0], w[len(w)-1], first, last)
	}
}
