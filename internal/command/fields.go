package command

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/form"
)

// ParseFields splits `key=value key2="two words"` into a map. Keys are
// lowercased; a later key overrides an earlier one.
func ParseFields(s string) (map[string]string, error) {
	args, err := SplitArgs(s)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		k = strings.ToLower(strings.TrimSpace(k))
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		fields[k] = v
	}
	return fields, nil
}

// SplitArgs splits s on whitespace, keeping single- or double-quoted runs
// together. Quotes are removed.
func SplitArgs(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args, nil
}

// ApplyFilter updates c with filter fields. An empty value or "any"
// clears that criterion.
func ApplyFilter(c domain.Criteria, fields map[string]string) (domain.Criteria, error) {
	for k, v := range fields {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, "any") {
			v = ""
		}
		switch k {
		case "cuisine":
			c.Cuisine = v
		case "difficulty":
			c.Difficulty = v
		case "tags", "tag":
			c.Tags = v
		case "rating", "min", "minrating":
			if v == "" {
				c.MinRating = 0
				continue
			}
			x, err := form.ParseNumber(v)
			if err != nil || x < 0 {
				return c, fmt.Errorf("minimum rating must be a non-negative number, got %q", v)
			}
			c.MinRating = x
		case "sort", "sortby":
			key, err := domain.ParseSortKey(v)
			if err != nil {
				return c, err
			}
			c.Sort = key
		default:
			return c, fmt.Errorf("unknown filter %q (cuisine, difficulty, rating, tags, sort)", k)
		}
	}
	return c, nil
}
