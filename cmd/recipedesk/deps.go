package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/form"
	"github.com/hammamikhairi/recipedesk/internal/gateway"
	"github.com/hammamikhairi/recipedesk/internal/mutation"
	"github.com/hammamikhairi/recipedesk/internal/store"
	"github.com/hammamikhairi/recipedesk/internal/view"
)

// readRetry bounds retries of idempotent reads.
const readRetry = 10 * time.Second

// deps is the wired object graph shared by every command.
type deps struct {
	gw       *gateway.Client
	store    *store.MemoryStore
	coord    *mutation.Coordinator
	pipeline *view.Pipeline
	eval     *view.Evaluator
	validate *validator.Validate
}

// wire builds the object graph from cfg. notifier may be nil.
func wire(notifier domain.Notifier) (*deps, error) {
	policy, err := mutation.ParsePolicy(cfg.Mutation.Policy)
	if err != nil {
		return nil, err
	}
	locale, err := view.ParseLocale(cfg.View.Locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", cfg.View.Locale, err)
	}

	gw := gateway.NewClient(cfg.API.BaseURL, log.Named("gateway"),
		gateway.WithHTTPTimeout(cfg.API.Timeout),
		gateway.WithRetry(readRetry),
	)
	st := store.NewMemoryStore(log.Named("store"))

	opts := []mutation.Option{
		mutation.WithPolicy(policy),
		mutation.WithRetry(cfg.Mutation.Retry),
		mutation.WithFetchLimit(cfg.API.FetchLimit),
	}
	if notifier != nil {
		opts = append(opts, mutation.WithNotifier(notifier))
	}
	coord := mutation.New(gw, st, log.Named("mutation"), opts...)

	eval := view.NewEvaluator(locale)
	pipeline, err := view.NewPipeline(eval, cfg.View.PageSize)
	if err != nil {
		return nil, err
	}

	return &deps{
		gw:       gw,
		store:    st,
		coord:    coord,
		pipeline: pipeline,
		eval:     eval,
		validate: form.NewValidator(),
	}, nil
}
