package linkmlio

import (
	"fmt"
	"time"

	"github.com/dromara/carbon/v2"
)

// SystemClock implements linkml.Timestamp over the system clock, using
// dromara/carbon/v2 for ISO-8601 parsing and formatting. The leaf
// validators do not call it: TypeValidator checks date/datetime/time
// ranges only for being strings.
type SystemClock struct{}

// NewSystemClock returns a SystemClock.
func NewSystemClock() *SystemClock { return &SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now() }

// ParseISO8601 parses s as an ISO-8601 timestamp, date, or time, returning
// an error if carbon cannot make sense of it.
func (SystemClock) ParseISO8601(s string) (time.Time, error) {
	c := carbon.Parse(s)
	if c.IsInvalid() {
		return time.Time{}, fmt.Errorf("parsing %q as ISO-8601: %w", s, c.Error)
	}
	return c.StdTime(), nil
}

// FormatISO8601 formats t in ISO-8601 form.
func (SystemClock) FormatISO8601(t time.Time) string {
	return carbon.CreateFromStdTime(t).ToIso8601String()
}
