package i18n

import "testing"

func TestLookupFallsBackToKey(t *testing.T) {
	tests := []struct {
		name   string
		got    string
		expect string
	}{
		{"ko country", Country(Korean, "South Korea"), "대한민국"},
		{"ko unknown country", Country(Korean, "Atlantis"), "Atlantis"},
		{"en country", Country(English, "South Korea"), "South Korea"},
		{"ko channel", Channel(Korean, "Paid Search"), "유료 검색"},
		{"ko not set", Channel(Korean, "(not set)"), "(미설정)"},
		{"en event", Event(English, "phone_calls"), "Phone call"},
		{"ko event", Event(Korean, "kakao_click"), "카카오톡 클릭"},
		{"unknown event", Event(Korean, "scroll"), "scroll"},
		{"ko label", Label(Korean, "sessions"), "세션"},
		{"ko label falls back to en", Label(Korean, "roas"), "ROAS"},
		{"unknown label", Label(English, "nope"), "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expect {
				t.Errorf("got %q, want %q", tt.got, tt.expect)
			}
		})
	}
}

func TestKoreanLabelsCoverEnglishKeys(t *testing.T) {
	ko := Labels(Korean)
	if len(ko) != len(labelsEN) {
		t.Fatalf("Labels(ko) has %d keys, want %d", len(ko), len(labelsEN))
	}
	for k := range labelsKO {
		if _, ok := labelsEN[k]; !ok {
			t.Errorf("korean label %q has no english counterpart", k)
		}
	}
}

func TestWeekday(t *testing.T) {
	if got := Weekday(Korean, "1"); got != "월" {
		t.Errorf("Weekday(ko, 1) = %q", got)
	}
	if got := Weekday(English, "0"); got != "Sun" {
		t.Errorf("Weekday(en, 0) = %q", got)
	}
	if got := Weekday(English, "Monday"); got != "Monday" {
		t.Errorf("unexpected rewrite of %q", got)
	}
}
