package rotation

import "testing"

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"days and hours", "3 days, 4:05:06", "3д 4ч"},
		{"single day", "1 day, 0:30:00", "1д 0ч"},
		{"overdue wraps to negative day", "-1 day, 23:59:58", "Требуется ротация"},
		{"overdue several days", "-3 days, 4:05:06", "Требуется ротация"},
		{"bare hours and minutes", "4:05:06", "4ч 5м"},
		{"under an hour", "0:42:10", "42м"},
		{"under a minute", "0:00:30", "0м"},
		{"unparsable passes through", "soon", "soon"},
		{"empty passes through", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatCountdown(tc.raw); got != tc.want {
				t.Errorf("FormatCountdown(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
