package exporter

import "fmt"

// formatFloat formats a float64 for CSV output with exactly 2 decimal
// places, so 13.4 exports as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatPct formats a percentage with 2 decimal places and a sign.
func formatPct(f float64) string {
	return fmt.Sprintf("%.2f%%", f)
}

func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
