package platform

import "fmt"

// Byte-size thresholds for FormatSize (spec.md §6 wire constant).
const (
	sizeKB = 1024
	sizeMB = 1024 * 1024
	sizeGB = 1024 * 1024 * 1024
)

// FormatSize renders a byte count the way a host's UI shell displays
// transfer progress and file sizes: the largest unit the value clears,
// rounded to two decimals (spec.md §6: "KB = 1 024, MB = 1 048 576,
// GB = 1 073 741 824; display uses 2-decimal rounding"). Hosts are free to
// format sizes their own way; this is offered as the reference rendering.
func FormatSize(bytes uint64) string {
	switch {
	case bytes >= sizeGB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/sizeGB)
	case bytes >= sizeMB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/sizeMB)
	case bytes >= sizeKB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/sizeKB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
