package dexmath

// Chart bucket widths in milliseconds.
const (
	MinuteMs = 60_000
	HourMs   = 3_600_000
	DayMs    = 86_400_000
)

// BucketStart rounds a millisecond timestamp down to the bucket boundary of
// the given width.
func BucketStart(ms int64, width int64) int64 {
	return ms - ms%width
}
