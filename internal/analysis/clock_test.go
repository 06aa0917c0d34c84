package analysis

import "testing"

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		input   string
		minutes int
		ok      bool
	}{
		{"08:00", 480, true},
		{"00:00", 0, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"8", 0, false},
		{"", 0, false},
		{"ab:cd", 0, false},
	}

	for _, c := range cases {
		minutes, ok := parseClockTime(c.input)
		if ok != c.ok || minutes != c.minutes {
			t.Errorf("parseClockTime(%q) = (%d, %v), want (%d, %v)", c.input, minutes, ok, c.minutes, c.ok)
		}
	}
}

func TestShiftClockTime(t *testing.T) {
	cases := []struct {
		input string
		shift int
		want  string
	}{
		{"08:00", 30, "08:30"},
		{"08:00", -30, "07:30"},
		{"23:45", 30, "00:15"}, // wraps forward past midnight
		{"00:10", -30, "23:40"}, // wraps backward past midnight
		{"garbage", 30, "garbage"},
	}

	for _, c := range cases {
		if got := shiftClockTime(c.input, c.shift); got != c.want {
			t.Errorf("shiftClockTime(%q, %d) = %q, want %q", c.input, c.shift, got, c.want)
		}
	}
}
