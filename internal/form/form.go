// Package form turns raw key=value input into validated drafts and
// patches. Validation errors stay here; nothing invalid reaches the
// coordinator.
package form

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hammamikhairi/recipedesk/internal/domain"
)

// Field names as they appear on the wire and in messages.
const (
	FieldName       = "name"
	FieldRating     = "rating"
	FieldCuisine    = "cuisine"
	FieldCalories   = "caloriesPerServing"
	FieldServings   = "servings"
	FieldPrep       = "prepTimeMinutes"
	FieldCook       = "cookTimeMinutes"
	FieldDifficulty = "difficulty"
	FieldTags       = "tags"
)

// Draft defaults.
const (
	DefaultServings   = 1
	DefaultDifficulty = "Easy"
)

// Difficulties are the labels offered by the forms. Other labels are
// accepted.
var Difficulties = []string{"Easy", "Medium", "Hard"}

// order is the order fields are checked in, so the first error reported
// is stable.
var order = []string{
	FieldName, FieldRating, FieldCuisine, FieldCalories, FieldServings,
	FieldPrep, FieldCook, FieldDifficulty, FieldTags,
}

var aliases = map[string]string{
	"name":               FieldName,
	"rating":             FieldRating,
	"cuisine":            FieldCuisine,
	"cal":                FieldCalories,
	"calories":           FieldCalories,
	"caloriesperserving": FieldCalories,
	"servings":           FieldServings,
	"serv":               FieldServings,
	"prep":               FieldPrep,
	"preptimeminutes":    FieldPrep,
	"cook":               FieldCook,
	"cooktimeminutes":    FieldCook,
	"difficulty":         FieldDifficulty,
	"tags":               FieldTags,
}

var messages = map[string]string{
	FieldName:     "name is required",
	FieldRating:   "rating must be between 0 and 5",
	FieldCalories: "calories must be greater than 0",
	FieldServings: "servings must be a whole number greater than 0",
	FieldPrep:     "times must be valid non-negative numbers",
	FieldCook:     "times must be valid non-negative numbers",
}

// Error is a validation failure on one field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func fieldError(field string) *Error {
	msg, ok := messages[field]
	if !ok {
		msg = "invalid value"
	}
	return &Error{Field: field, Message: msg}
}

// ErrNotFinite is returned by ParseNumber for NaN and infinities, which
// strconv accepts but JSON cannot carry.
var ErrNotFinite = errors.New("number is not finite")

// ParseNumber parses a decimal number and rejects NaN and infinities.
func ParseNumber(s string) (float64, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, ErrNotFinite
	}
	return x, nil
}

// NewValidator returns a validator that knows the notblank and finite
// rules and reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		x := fl.Field().Float()
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Translate maps validator errors to *Error. Other errors pass through.
func Translate(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldError(verrs[0].Field())
	}
	return err
}

// Normalize maps user spellings ("cal", "prep") to field names. Unknown
// keys are an error.
func Normalize(fields map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		canon, ok := aliases[strings.ToLower(strings.TrimSpace(k))]
		if !ok {
			return nil, &Error{Field: k, Message: "unknown field"}
		}
		out[canon] = fields[k]
	}
	return out, nil
}

// ParseDraft builds a create draft. name, rating, calories, prep and cook
// are required; servings defaults to 1 and difficulty to Easy.
func ParseDraft(v *validator.Validate, fields map[string]string) (domain.Draft, error) {
	fields, err := Normalize(fields)
	if err != nil {
		return domain.Draft{}, err
	}
	for _, f := range []string{FieldName, FieldRating, FieldCalories, FieldPrep, FieldCook} {
		if _, ok := fields[f]; !ok {
			return domain.Draft{}, fieldError(f)
		}
	}

	d := domain.Draft{
		Servings:   DefaultServings,
		Difficulty: DefaultDifficulty,
		Tags:       []string{},
	}
	p, err := parse(fields)
	if err != nil {
		return domain.Draft{}, err
	}
	d = applyDraft(d, p)

	if err := v.Struct(d); err != nil {
		return domain.Draft{}, Translate(err)
	}
	return d, nil
}

// ParsePatch builds a partial update from the fields present.
func ParsePatch(v *validator.Validate, fields map[string]string) (domain.Patch, error) {
	fields, err := Normalize(fields)
	if err != nil {
		return domain.Patch{}, err
	}
	p, err := parse(fields)
	if err != nil {
		return domain.Patch{}, err
	}
	if p.IsEmpty() {
		return domain.Patch{}, &Error{Message: "nothing to change"}
	}
	if err := v.Struct(p); err != nil {
		return domain.Patch{}, Translate(err)
	}
	return p, nil
}

// ValidateDraft checks an already-decoded draft (HTTP bodies).
func ValidateDraft(v *validator.Validate, d domain.Draft) error {
	return Translate(v.Struct(d))
}

// ValidatePatch checks an already-decoded patch (HTTP bodies).
func ValidatePatch(v *validator.Validate, p domain.Patch) error {
	if p.IsEmpty() {
		return &Error{Message: "nothing to change"}
	}
	return Translate(v.Struct(p))
}

// SplitTags splits comma-separated tags, trims them and drops empties.
func SplitTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Values renders r as the field map an edit form starts from.
func Values(r domain.Recipe) map[string]string {
	return map[string]string{
		FieldName:       r.Name,
		FieldRating:     formatFloat(r.Rating),
		FieldCuisine:    r.Cuisine,
		FieldCalories:   formatFloat(r.CaloriesPerServing),
		FieldServings:   strconv.Itoa(r.Servings),
		FieldPrep:       formatFloat(r.PrepTimeMinutes),
		FieldCook:       formatFloat(r.CookTimeMinutes),
		FieldDifficulty: r.Difficulty,
		FieldTags:       strings.Join(r.Tags, ", "),
	}
}

// parse converts present fields to a patch, checking numbers parse.
func parse(fields map[string]string) (domain.Patch, error) {
	var p domain.Patch
	for _, f := range order {
		raw, ok := fields[f]
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		switch f {
		case FieldName:
			p.Name = domain.Ptr(raw)
		case FieldCuisine:
			p.Cuisine = domain.Ptr(raw)
		case FieldDifficulty:
			p.Difficulty = domain.Ptr(raw)
		case FieldTags:
			tags := SplitTags(raw)
			p.Tags = &tags
		case FieldServings:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return domain.Patch{}, fieldError(f)
			}
			p.Servings = domain.Ptr(n)
		default:
			x, err := ParseNumber(raw)
			if err != nil {
				return domain.Patch{}, fieldError(f)
			}
			switch f {
			case FieldRating:
				p.Rating = domain.Ptr(x)
			case FieldCalories:
				p.CaloriesPerServing = domain.Ptr(x)
			case FieldPrep:
				p.PrepTimeMinutes = domain.Ptr(x)
			case FieldCook:
				p.CookTimeMinutes = domain.Ptr(x)
			}
		}
	}
	return p, nil
}

func applyDraft(d domain.Draft, p domain.Patch) domain.Draft {
	r := p.Apply(d.Recipe(0))
	return domain.Draft{
		Name:               r.Name,
		Rating:             r.Rating,
		Cuisine:            r.Cuisine,
		CaloriesPerServing: r.CaloriesPerServing,
		Servings:           r.Servings,
		PrepTimeMinutes:    r.PrepTimeMinutes,
		CookTimeMinutes:    r.CookTimeMinutes,
		Difficulty:         r.Difficulty,
		Tags:               r.Tags,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
