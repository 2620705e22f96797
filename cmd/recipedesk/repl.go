package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/recipedesk/internal/command"
	"github.com/hammamikhairi/recipedesk/internal/display"
	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/form"
	"github.com/hammamikhairi/recipedesk/internal/logger"
	"github.com/hammamikhairi/recipedesk/internal/mutation"
	"github.com/hammamikhairi/recipedesk/internal/view"
)

// runInteractive starts the terminal listing. Bubble Tea owns the
// terminal; the REPL loop runs on its own goroutine.
func runInteractive(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := &cliApp{
		parser: command.NewKeywordParser(log.Named("parser")),
		log:    log,
		state:  view.NewState(),
	}
	ui := display.NewUI(app.status)
	app.ui = ui
	app.notifier = command.NewCLINotifier(log, ui.Printf)

	d, err := wire(app.notifier)
	if err != nil {
		return err
	}
	app.d = d

	fmt.Println(display.RenderBanner("type 'help' for commands, 'quit' to exit"))

	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()

	if n := d.coord.Pending(); n > 0 {
		fmt.Printf("waiting for %d pending confirmation(s)…\n", n)
	}
	d.coord.Wait()
	return nil
}

type cliApp struct {
	d        *deps
	parser   domain.IntentParser
	notifier *command.CLINotifier
	log      *logger.Logger
	ui       *display.UI

	mu            sync.Mutex
	state         view.State
	pendingDelete int // id awaiting yes/no, 0 when none

	loading atomic.Bool
}

// status feeds the display's status bar. Called from the UI goroutine.
func (a *cliApp) status() display.Status {
	if a.d == nil {
		return display.Status{}
	}
	a.mu.Lock()
	res := a.d.pipeline.Render(a.d.store, a.state)
	a.mu.Unlock()

	return display.Status{
		Page:       res.Page.Number,
		PageCount:  res.Page.PageCount,
		RangeStart: res.Page.RangeStart,
		RangeEnd:   res.Page.RangeEnd,
		Total:      res.Page.Total,
		Filter:     display.DescribeCriteria(res.State.Criteria),
		Pending:    a.d.coord.Pending(),
		Failed:     a.notifier.Failures(),
		Loading:    a.loading.Load(),
	}
}

func (a *cliApp) run(ctx context.Context) {
	a.ui.PrintInfo("Loading recipes…")
	a.reload(ctx, false)

	uiCh := a.ui.InputChan()
	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		intent, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.ui.PrintError(err.Error())
			continue
		}

		a.log.Debug("intent: %s (id=%d payload=%q)", intent.Type, intent.ID, intent.Payload)
		if !a.handleIntent(ctx, intent) {
			return
		}
	}
}

// handleIntent dispatches one command. It returns false when the user
// asked to quit.
func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	// A pending delete only survives an immediate yes/no.
	if intent.Type != domain.IntentConfirm && intent.Type != domain.IntentCancel {
		a.clearPendingDelete(true)
	}

	switch intent.Type {
	case domain.IntentHelp:
		a.ui.PrintBlock(display.RenderHelp())
	case domain.IntentList:
		a.render()
	case domain.IntentNext:
		a.movePage(func(s view.State, n int) view.State { return s.Next(n) })
	case domain.IntentPrev:
		a.movePage(func(s view.State, n int) view.State { return s.Prev(n) })
	case domain.IntentPage:
		a.movePage(func(s view.State, n int) view.State { return s.WithPage(intent.ID, n) })
	case domain.IntentFilter:
		a.filter(intent.Fields)
	case domain.IntentClear:
		a.mu.Lock()
		a.state = a.state.WithCriteria(domain.Criteria{Sort: a.state.Criteria.Sort})
		a.mu.Unlock()
		a.render()
	case domain.IntentSort:
		a.sort(intent.Payload)
	case domain.IntentShow:
		a.show(intent.ID)
	case domain.IntentAdd:
		a.add(ctx, intent.Fields)
	case domain.IntentEdit:
		a.edit(ctx, intent.ID, intent.Fields)
	case domain.IntentDelete:
		a.askDelete(intent.ID)
	case domain.IntentConfirm:
		a.confirmDelete(ctx)
	case domain.IntentCancel:
		a.clearPendingDelete(true)
	case domain.IntentReload:
		go a.reload(ctx, true)
	case domain.IntentStats:
		a.ui.Println(display.RenderKpis(a.result().Kpis))
	case domain.IntentFacets:
		a.ui.PrintBlock(display.RenderFacets(a.result().Facets))
	case domain.IntentQuit:
		a.ui.PrintInfo("Bye.")
		return false
	default:
		a.ui.PrintHint(fmt.Sprintf("Didn't catch %q. Type 'help' for commands.", intent.Payload))
	}
	return true
}

// result renders the current state without printing it.
func (a *cliApp) result() view.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	res := a.d.pipeline.Render(a.d.store, a.state)
	a.state = res.State
	return res
}

func (a *cliApp) render() {
	res := a.result()
	a.ui.Println(display.RenderKpis(res.Kpis))
	a.ui.PrintBlock(display.RenderTable(res.Page))
}

func (a *cliApp) movePage(step func(view.State, int) view.State) {
	res := a.result()
	a.mu.Lock()
	a.state = step(a.state, res.Page.PageCount)
	a.mu.Unlock()
	a.render()
}

func (a *cliApp) filter(fields map[string]string) {
	if len(fields) == 0 {
		a.ui.PrintBlock(display.RenderFacets(a.result().Facets))
		a.ui.PrintHint("filter cuisine=Italian difficulty=easy rating=4 tags=quick,pasta (any clears one)")
		return
	}
	a.mu.Lock()
	c, err := command.ApplyFilter(a.state.Criteria, fields)
	if err == nil {
		a.state = a.state.WithCriteria(c)
	}
	a.mu.Unlock()
	if err != nil {
		a.ui.PrintError(err.Error())
		return
	}
	a.render()
}

func (a *cliApp) sort(payload string) {
	if payload == "" {
		for _, k := range domain.SortKeys {
			a.ui.PrintHint(fmt.Sprintf("%-12s %s", k, k.Label()))
		}
		return
	}
	key, err := domain.ParseSortKey(payload)
	if err != nil {
		a.ui.PrintError(err.Error())
		return
	}
	a.mu.Lock()
	a.state = a.state.WithSort(key)
	a.mu.Unlock()
	a.render()
}

func (a *cliApp) show(id int) {
	rec, err := a.d.store.Get(id)
	if err != nil {
		a.ui.PrintError(fmt.Sprintf("No recipe #%d.", id))
		return
	}
	a.ui.PrintBlock(display.RenderRecipe(rec))
}

func (a *cliApp) add(ctx context.Context, fields map[string]string) {
	if len(fields) == 0 {
		a.ui.PrintHint("add name=\"Shakshuka\" rating=4.5 cal=320 prep=10 cook=25 cuisine=Tunisian tags=eggs,brunch")
		return
	}
	draft, err := form.ParseDraft(a.d.validate, fields)
	if err != nil {
		a.ui.PrintError(err.Error())
		return
	}

	task := a.d.coord.Create(ctx, draft)
	a.ui.PrintInfo(fmt.Sprintf("Creating %q…", draft.Name))
	go func() {
		rec, err := task.Wait(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				_ = a.notifier.NotifyUrgent(ctx, fmt.Sprintf("Could not create %q: %v", draft.Name, err))
			}
			return
		}
		_ = a.notifier.Notify(ctx, fmt.Sprintf("Created #%d %s.", rec.ID, rec.Name))
	}()
}

func (a *cliApp) edit(ctx context.Context, id int, fields map[string]string) {
	if !a.d.store.Has(id) {
		a.ui.PrintError(fmt.Sprintf("No recipe #%d.", id))
		return
	}
	if len(fields) == 0 {
		rec, _ := a.d.store.Get(id)
		vals := form.Values(rec)
		parts := []string{"edit", fmt.Sprint(id)}
		for _, k := range []string{form.FieldName, form.FieldRating, form.FieldCalories, form.FieldServings, form.FieldPrep, form.FieldCook, form.FieldDifficulty} {
			parts = append(parts, fmt.Sprintf("%s=%q", k, vals[k]))
		}
		a.ui.PrintHint(strings.Join(parts, " "))
		return
	}
	patch, err := form.ParsePatch(a.d.validate, fields)
	if err != nil {
		a.ui.PrintError(err.Error())
		return
	}

	task := a.d.coord.Edit(ctx, id, patch)
	if _, err, done := task.Result(); done && err != nil {
		a.ui.PrintError(err.Error())
		return
	}
	a.render()
	go func() {
		rec, err := task.Wait(ctx)
		var div *mutation.DivergenceError
		switch {
		case errors.As(err, &div):
			// Already reported by the coordinator.
		case err != nil:
			a.log.Warn("edit %d: %v", id, err)
		default:
			_ = a.notifier.Notify(ctx, fmt.Sprintf("Saved #%d %s.", rec.ID, rec.Name))
		}
	}()
}

func (a *cliApp) askDelete(id int) {
	rec, err := a.d.store.Get(id)
	if err != nil {
		a.ui.PrintError(fmt.Sprintf("No recipe #%d.", id))
		return
	}
	a.mu.Lock()
	a.pendingDelete = id
	a.mu.Unlock()
	a.ui.PrintInfo(fmt.Sprintf("Delete #%d %s? (yes/no)", rec.ID, rec.Name))
}

func (a *cliApp) clearPendingDelete(announce bool) {
	a.mu.Lock()
	id := a.pendingDelete
	a.pendingDelete = 0
	a.mu.Unlock()
	if id != 0 && announce {
		a.ui.PrintHint(fmt.Sprintf("Kept #%d.", id))
	}
}

func (a *cliApp) confirmDelete(ctx context.Context) {
	a.mu.Lock()
	id := a.pendingDelete
	a.pendingDelete = 0
	a.mu.Unlock()
	if id == 0 {
		a.ui.PrintHint("Nothing to confirm.")
		return
	}

	task := a.d.coord.Delete(ctx, id)
	if _, err, done := task.Result(); done && err != nil {
		a.ui.PrintError(err.Error())
		return
	}
	a.render()
	go func() {
		rec, err := task.Wait(ctx)
		if err == nil {
			_ = a.notifier.Notify(ctx, fmt.Sprintf("Deleted #%d %s.", rec.ID, rec.Name))
		}
	}()
}

// reload fetches the collection. Superseded loads stay quiet.
func (a *cliApp) reload(ctx context.Context, announce bool) {
	a.loading.Store(true)
	n, err := a.d.coord.Load(ctx)
	a.loading.Store(false)

	switch {
	case errors.Is(err, mutation.ErrSuperseded), errors.Is(err, context.Canceled):
		return
	case err != nil:
		a.ui.PrintError(fmt.Sprintf("Could not load recipes: %v", err))
		a.ui.PrintHint("Type 'reload' to try again.")
		return
	}
	if announce {
		a.ui.PrintInfo(fmt.Sprintf("Reloaded %d recipes.", n))
	}
	a.render()
}
