package display

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testModel(t *testing.T) (model, chan string) {
	t.Helper()
	submit := make(chan string, 8)
	return newModel(func() Status { return Status{} }, submit, make(chan struct{}), func(string) {}), submit
}

func typeLine(m model, line string) model {
	m.input.SetValue(line)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model)
}

func TestEnterSubmitsTrimmedLine(t *testing.T) {
	m, submit := testModel(t)

	m = typeLine(m, "  show 3  ")
	if got := <-submit; got != "show 3" {
		t.Fatalf("expected %q, got %q", "show 3", got)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input reset, got %q", m.input.Value())
	}

	typeLine(m, "   ")
	if len(submit) != 0 {
		t.Fatal("blank line should not be submitted")
	}
}

func TestHistoryBrowsing(t *testing.T) {
	m, submit := testModel(t)
	m = typeLine(m, "list")
	m = typeLine(m, "next")
	m = typeLine(m, "next")
	for len(submit) > 0 {
		<-submit
	}

	if len(m.history) != 2 {
		t.Fatalf("expected repeated line collapsed, history=%v", m.history)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(model)
	if m.input.Value() != "next" {
		t.Fatalf("expected newest entry, got %q", m.input.Value())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(model)
	if m.input.Value() != "list" {
		t.Fatalf("expected to stop at oldest entry, got %q", m.input.Value())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared past newest entry, got %q", m.input.Value())
	}
}

func TestPagingKeys(t *testing.T) {
	m, submit := testModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	m = next.(model)
	if a, b := <-submit, <-submit; a != nextCommand || b != prevCommand {
		t.Fatalf("expected next then prev, got %q %q", a, b)
	}
	if len(m.history) != 0 {
		t.Fatalf("paging keys should not enter history, got %v", m.history)
	}

	m.input.SetValue("edit 2 ")
	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	if len(submit) != 0 {
		t.Fatal("paging keys must not fire while typing")
	}
}

func TestRenderBar(t *testing.T) {
	bar := renderBar(Status{
		Page: 2, PageCount: 5, RangeStart: 11, RangeEnd: 20, Total: 48,
		Filter: "cuisine=Italian", Pending: 1, Failed: 2,
	}, 120)
	for _, want := range []string{"page 2 of 5", "11–20 of 48", "cuisine=Italian", "1 pending", "2 failed"} {
		if !strings.Contains(bar, want) {
			t.Fatalf("bar missing %q: %q", want, bar)
		}
	}

	loading := renderBar(Status{Loading: true}, 0)
	if !strings.Contains(loading, "loading…") || strings.Contains(loading, "page ") {
		t.Fatalf("unexpected loading bar %q", loading)
	}
}

func TestTitle(t *testing.T) {
	if got := title(Status{Page: 1, PageCount: 3}); got != "recipedesk · page 1 of 3" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := title(Status{Page: 1, PageCount: 3, Pending: 2}); !strings.HasSuffix(got, "2 pending") {
		t.Fatalf("unexpected title %q", got)
	}
}
