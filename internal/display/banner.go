package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerArt string

// RenderBanner returns the startup banner with tagline underneath, both
// centred for the current terminal width.
func RenderBanner(tagline string) string {
	return bannerAt(termWidth(), tagline)
}

func bannerAt(width int, tagline string) string {
	lines := strings.Split(strings.TrimRight(bannerArt, "\n"), "\n")

	// The art is centred as one block so its columns stay aligned.
	artW := 0
	for _, l := range lines {
		artW = max(artW, lipgloss.Width(l))
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(indent(width, artW))
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
	if tagline != "" {
		b.WriteByte('\n')
		b.WriteString(indent(width, lipgloss.Width(tagline)))
		b.WriteString(secondaryStyle.Render(tagline))
		b.WriteByte('\n')
	}
	return b.String()
}

func indent(width, w int) string {
	if width <= w {
		return ""
	}
	return strings.Repeat(" ", (width-w)/2)
}

// termWidth returns the terminal column count, 80 when stdout isn't one.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
