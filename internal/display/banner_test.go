package display

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestBannerCentred(t *testing.T) {
	out := bannerAt(200, "hello")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	last := lines[len(lines)-1]
	if !strings.Contains(last, "hello") {
		t.Fatalf("expected tagline on last line, got %q", last)
	}
	pad := len(last) - len(strings.TrimLeft(last, " "))
	if want := (200 - lipgloss.Width("hello")) / 2; pad != want {
		t.Fatalf("expected tagline indent %d, got %d", want, pad)
	}
}

func TestBannerNarrowTerminal(t *testing.T) {
	out := bannerAt(1, "")
	if strings.Contains(out, "\n\n") {
		t.Fatal("empty tagline should not add a blank line")
	}

	art := strings.Split(strings.TrimRight(bannerArt, "\n"), "\n")
	got := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(got) != len(art) {
		t.Fatalf("expected %d lines, got %d", len(art), len(got))
	}
	for i := range art {
		if !strings.HasPrefix(got[i], strings.TrimRight(art[i], " ")) {
			t.Fatalf("line %d indented on a narrow terminal: %q", i, got[i])
		}
	}
}
