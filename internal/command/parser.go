// Package command parses REPL input into intents and reports
// notifications back to the terminal.
package command

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple
// patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

// build fills in the intent from the regex submatches.
type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
	build  func(m []string, in *domain.Intent) error
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(list|ls)$`), domain.IntentList, nil},
		{regexp.MustCompile(`(?i)^(next|n|>)$`), domain.IntentNext, nil},
		{regexp.MustCompile(`(?i)^(prev|previous|p|<)$`), domain.IntentPrev, nil},
		{regexp.MustCompile(`(?i)^(?:page|pg)\s+(\d+)$`), domain.IntentPage, withID(1)},
		{regexp.MustCompile(`^(\d+)$`), domain.IntentPage, withID(1)},
		{regexp.MustCompile(`(?i)^filter(?:\s+(.*))?$`), domain.IntentFilter, withFields(1)},
		{regexp.MustCompile(`(?i)^(clear|reset)$`), domain.IntentClear, nil},
		{regexp.MustCompile(`(?i)^sort(?:\s+(\S+))?$`), domain.IntentSort, withPayload(1)},
		{regexp.MustCompile(`(?i)^(?:show|view)\s+(\d+)$`), domain.IntentShow, withID(1)},
		{regexp.MustCompile(`(?i)^(?:add|new)(?:\s+(.*))?$`), domain.IntentAdd, withFields(1)},
		{regexp.MustCompile(`(?i)^edit\s+(\d+)(?:\s+(.*))?$`), domain.IntentEdit, both(withID(1), withFields(2))},
		{regexp.MustCompile(`(?i)^(?:delete|del|rm)\s+(\d+)$`), domain.IntentDelete, withID(1)},
		{regexp.MustCompile(`(?i)^(yes|y)$`), domain.IntentConfirm, nil},
		{regexp.MustCompile(`(?i)^(no|cancel)$`), domain.IntentCancel, nil},
		{regexp.MustCompile(`(?i)^(reload|refresh)$`), domain.IntentReload, nil},
		{regexp.MustCompile(`(?i)^(stats|kpis)$`), domain.IntentStats, nil},
		{regexp.MustCompile(`(?i)^facets$`), domain.IntentFacets, nil},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp, nil},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.IntentQuit, nil},
	}
	return p
}

// Parse converts user input into an intent. Malformed arguments to a
// recognised command are an error; unrecognised input is IntentUnknown.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		in := &domain.Intent{Type: rule.intent}
		if rule.build != nil {
			if err := rule.build(m, in); err != nil {
				return nil, fmt.Errorf("%s: %w", rule.intent, err)
			}
		}
		p.log.Debug("matched intent: %s", rule.intent)
		return in, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

func withID(group int) func([]string, *domain.Intent) error {
	return func(m []string, in *domain.Intent) error {
		n, err := strconv.Atoi(m[group])
		if err != nil {
			return fmt.Errorf("invalid number %q", m[group])
		}
		in.ID = n
		return nil
	}
}

func withFields(group int) func([]string, *domain.Intent) error {
	return func(m []string, in *domain.Intent) error {
		fields, err := ParseFields(m[group])
		if err != nil {
			return err
		}
		in.Fields = fields
		return nil
	}
}

func withPayload(group int) func([]string, *domain.Intent) error {
	return func(m []string, in *domain.Intent) error {
		in.Payload = strings.ToLower(m[group])
		return nil
	}
}

func both(fns ...func([]string, *domain.Intent) error) func([]string, *domain.Intent) error {
	return func(m []string, in *domain.Intent) error {
		for _, fn := range fns {
			if err := fn(m, in); err != nil {
				return err
			}
		}
		return nil
	}
}
