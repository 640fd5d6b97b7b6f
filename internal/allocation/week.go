package allocation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidWeek is returned for identifiers not shaped like 2025-W43.
var ErrInvalidWeek = errors.New("invalid week identifier")

var weekPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// ParseWeek splits an ISO week identifier into year and week number.
func ParseWeek(week string) (int, int, error) {
	m := weekPattern.FindStringSubmatch(week)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWeek, week)
	}
	year, _ := strconv.Atoi(m[1])
	num, _ := strconv.Atoi(m[2])
	if num < 1 || num > 53 {
		return 0, 0, fmt.Errorf("%w: week %d out of range", ErrInvalidWeek, num)
	}
	return year, num, nil
}

// FormatWeek renders an identifier such as 2025-W07.
func FormatWeek(year, num int) string {
	return fmt.Sprintf("%d-W%02d", year, num)
}

// PreviousWeek returns the identifier of the week before. Week 1 always rolls back to week 52
// of the prior year, even when that year has an ISO week 53; see HasISOWeek53.
func PreviousWeek(week string) (string, error) {
	year, num, err := ParseWeek(week)
	if err != nil {
		return "", err
	}
	if num == 1 {
		return FormatWeek(year-1, 52), nil
	}
	return FormatWeek(year, num-1), nil
}

// HasISOWeek53 reports whether the ISO calendar year has 53 weeks.
func HasISOWeek53(year int) bool {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w == 53
}

// CurrentWeek returns the ISO week identifier containing t.
func CurrentWeek(t time.Time) string {
	year, num := t.ISOWeek()
	return FormatWeek(year, num)
}
