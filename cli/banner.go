package cli

import (
	"fmt"
	"strings"
)

const bannerDefaultWidth = 60

// PrintBanner renders a box-drawing banner around a single title.
func PrintBanner(title string) {
	PrintBannerLines(title)
}

// PrintBannerLines renders one box around several centered lines. The box
// grows to fit the longest line.
func PrintBannerLines(lines ...string) {
	inner := bannerDefaultWidth - 2
	for _, line := range lines {
		if len(line)+2 > inner {
			inner = len(line) + 2
		}
	}

	topBottom := strings.Repeat("═", inner)
	fmt.Printf("╔%s╗\n", topBottom)
	for _, line := range lines {
		fmt.Printf("║%s║\n", padCenter(line, inner))
	}
	fmt.Printf("╚%s╝\n", topBottom)
}

func padCenter(text string, width int) string {
	if len(text) >= width {
		return text[:width]
	}
	padTotal := width - len(text)
	left := padTotal / 2
	right := padTotal - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}
