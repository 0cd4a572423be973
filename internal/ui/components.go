package ui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
)

func newProgressBar() progress.Model {
	return progress.New(
		progress.WithScaledGradient("#5F87FF", "#AF5FFF"),
		progress.WithoutPercentage(),
	)
}

func progressRatio(elapsed, total float64) float64 {
	if total <= 0 || math.IsNaN(elapsed) {
		return 0
	}
	return min(max(elapsed/total, 0), 1)
}

func volumeIcon(vol float64) string {
	switch {
	case vol > 0.5:
		return "🔊"
	case vol > 0:
		return "🔉"
	default:
		return "🔇"
	}
}

// renderVolume picks the icon from the real volume and the number from the
// animated one.
func renderVolume(vol, shown float64) string {
	pct := int(math.Round(min(max(shown, 0), 1) * 100))
	return fmt.Sprintf("%s %d%%", volumeIcon(vol), pct)
}
