package rotation

import (
	"fmt"
	"regexp"
	"strconv"
)

// RotationDueLabel is shown when the countdown has already passed zero.
const RotationDueLabel = "Требуется ротация"

// The scheduler reports time_until_rotation as a Python timedelta string:
// "3 days, 4:05:06" or "-1 day, 23:59:58", or bare "4:05:06" under a day.
var (
	timedeltaWithDays = regexp.MustCompile(`^(-?\d+)\s+days?,\s+(\d+):(\d+):(\d+)$`)
	timedeltaBare     = regexp.MustCompile(`^(\d+):(\d+):(\d+)$`)
)

// FormatCountdown turns a timedelta string into the short human label used
// in rotation listings. Negative timedeltas mean rotation is overdue.
// Strings that match neither form are shown as-is.
func FormatCountdown(raw string) string {
	if m := timedeltaWithDays.FindStringSubmatch(raw); m != nil {
		days, _ := strconv.Atoi(m[1])
		if days < 0 {
			return RotationDueLabel
		}
		hours, _ := strconv.Atoi(m[2])
		return shortLabel(days, hours, minutesOf(m[3]))
	}
	if m := timedeltaBare.FindStringSubmatch(raw); m != nil {
		hours, _ := strconv.Atoi(m[1])
		return shortLabel(0, hours, minutesOf(m[2]))
	}
	return raw
}

func minutesOf(s string) int {
	minutes, _ := strconv.Atoi(s)
	return minutes
}

func shortLabel(days, hours, minutes int) string {
	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dч %dм", hours, minutes)
	default:
		return fmt.Sprintf("%dм", minutes)
	}
}
