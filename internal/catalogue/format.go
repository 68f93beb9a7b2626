package catalogue

import "fmt"

// FormatTimestamp renders a time offset in seconds as MM:SS by integer
// truncation, matching the reference implementation's display format.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	minutes := total / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
