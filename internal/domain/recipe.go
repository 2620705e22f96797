// Package domain defines the core types and interfaces for recipedesk.
// All other packages depend on domain; domain depends on nothing.
package domain

// Recipe is one record of the remote collection.
type Recipe struct {
	ID                 int      `json:"id" yaml:"id"`
	Name               string   `json:"name" yaml:"name"`
	Rating             float64  `json:"rating" yaml:"rating"`
	Cuisine            string   `json:"cuisine" yaml:"cuisine"`
	CaloriesPerServing float64  `json:"caloriesPerServing" yaml:"caloriesPerServing"`
	Servings           int      `json:"servings" yaml:"servings"`
	PrepTimeMinutes    float64  `json:"prepTimeMinutes" yaml:"prepTimeMinutes"`
	CookTimeMinutes    float64  `json:"cookTimeMinutes" yaml:"cookTimeMinutes"`
	Difficulty         string   `json:"difficulty" yaml:"difficulty"`
	Tags               []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Carried through from the remote; not part of the listing view.
	Ingredients  []string `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	Instructions []string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	MealType     []string `json:"mealType,omitempty" yaml:"mealType,omitempty"`
	Image        string   `json:"image,omitempty" yaml:"image,omitempty"`
	ReviewCount  int      `json:"reviewCount,omitempty" yaml:"reviewCount,omitempty"`
	UserID       int      `json:"userId,omitempty" yaml:"userId,omitempty"`
}

// TotalMinutes is prep plus cook time, the value behind the time sort.
func (r Recipe) TotalMinutes() float64 {
	return r.PrepTimeMinutes + r.CookTimeMinutes
}

// Clone returns a deep copy so callers can't alias the store's slices.
func (r Recipe) Clone() Recipe {
	r.Tags = cloneStrings(r.Tags)
	r.Ingredients = cloneStrings(r.Ingredients)
	r.Instructions = cloneStrings(r.Instructions)
	r.MealType = cloneStrings(r.MealType)
	return r
}

// Draft is a recipe that has not been assigned an id yet. It is the
// create payload sent to the remote.
type Draft struct {
	Name               string   `json:"name" validate:"notblank"`
	Rating             float64  `json:"rating" validate:"finite,gte=0,lte=5"`
	Cuisine            string   `json:"cuisine"`
	CaloriesPerServing float64  `json:"caloriesPerServing" validate:"finite,gt=0"`
	Servings           int      `json:"servings" validate:"gt=0"`
	PrepTimeMinutes    float64  `json:"prepTimeMinutes" validate:"finite,gte=0"`
	CookTimeMinutes    float64  `json:"cookTimeMinutes" validate:"finite,gte=0"`
	Difficulty         string   `json:"difficulty"`
	Tags               []string `json:"tags"`
}

// Recipe converts the draft into a record with the given id.
func (d Draft) Recipe(id int) Recipe {
	return Recipe{
		ID:                 id,
		Name:               d.Name,
		Rating:             d.Rating,
		Cuisine:            d.Cuisine,
		CaloriesPerServing: d.CaloriesPerServing,
		Servings:           d.Servings,
		PrepTimeMinutes:    d.PrepTimeMinutes,
		CookTimeMinutes:    d.CookTimeMinutes,
		Difficulty:         d.Difficulty,
		Tags:               cloneStrings(d.Tags),
	}
}

// Patch is a partial update. Nil fields are left untouched on merge.
type Patch struct {
	Name               *string   `json:"name,omitempty" validate:"omitnil,notblank"`
	Rating             *float64  `json:"rating,omitempty" validate:"omitnil,finite,gte=0,lte=5"`
	Cuisine            *string   `json:"cuisine,omitempty"`
	CaloriesPerServing *float64  `json:"caloriesPerServing,omitempty" validate:"omitnil,finite,gt=0"`
	Servings           *int      `json:"servings,omitempty" validate:"omitnil,gt=0"`
	PrepTimeMinutes    *float64  `json:"prepTimeMinutes,omitempty" validate:"omitnil,finite,gte=0"`
	CookTimeMinutes    *float64  `json:"cookTimeMinutes,omitempty" validate:"omitnil,finite,gte=0"`
	Difficulty         *string   `json:"difficulty,omitempty"`
	Tags               *[]string `json:"tags,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Rating == nil && p.Cuisine == nil &&
		p.CaloriesPerServing == nil && p.Servings == nil &&
		p.PrepTimeMinutes == nil && p.CookTimeMinutes == nil &&
		p.Difficulty == nil && p.Tags == nil
}

// Apply merges the patch into r and returns the result. r is not modified.
func (p Patch) Apply(r Recipe) Recipe {
	out := r.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Rating != nil {
		out.Rating = *p.Rating
	}
	if p.Cuisine != nil {
		out.Cuisine = *p.Cuisine
	}
	if p.CaloriesPerServing != nil {
		out.CaloriesPerServing = *p.CaloriesPerServing
	}
	if p.Servings != nil {
		out.Servings = *p.Servings
	}
	if p.PrepTimeMinutes != nil {
		out.PrepTimeMinutes = *p.PrepTimeMinutes
	}
	if p.CookTimeMinutes != nil {
		out.CookTimeMinutes = *p.CookTimeMinutes
	}
	if p.Difficulty != nil {
		out.Difficulty = *p.Difficulty
	}
	if p.Tags != nil {
		out.Tags = cloneStrings(*p.Tags)
	}
	return out
}

// Then composes two patches: fields set in next win over fields set in p.
func (p Patch) Then(next Patch) Patch {
	out := p
	if next.Name != nil {
		out.Name = next.Name
	}
	if next.Rating != nil {
		out.Rating = next.Rating
	}
	if next.Cuisine != nil {
		out.Cuisine = next.Cuisine
	}
	if next.CaloriesPerServing != nil {
		out.CaloriesPerServing = next.CaloriesPerServing
	}
	if next.Servings != nil {
		out.Servings = next.Servings
	}
	if next.PrepTimeMinutes != nil {
		out.PrepTimeMinutes = next.PrepTimeMinutes
	}
	if next.CookTimeMinutes != nil {
		out.CookTimeMinutes = next.CookTimeMinutes
	}
	if next.Difficulty != nil {
		out.Difficulty = next.Difficulty
	}
	if next.Tags != nil {
		out.Tags = next.Tags
	}
	return out
}

// Without returns p with every field that other sets cleared.
func (p Patch) Without(other Patch) Patch {
	out := p
	if other.Name != nil {
		out.Name = nil
	}
	if other.Rating != nil {
		out.Rating = nil
	}
	if other.Cuisine != nil {
		out.Cuisine = nil
	}
	if other.CaloriesPerServing != nil {
		out.CaloriesPerServing = nil
	}
	if other.Servings != nil {
		out.Servings = nil
	}
	if other.PrepTimeMinutes != nil {
		out.PrepTimeMinutes = nil
	}
	if other.CookTimeMinutes != nil {
		out.CookTimeMinutes = nil
	}
	if other.Difficulty != nil {
		out.Difficulty = nil
	}
	if other.Tags != nil {
		out.Tags = nil
	}
	return out
}

// Inverse returns the patch that restores the attributes p touches to
// their values in before.
func (p Patch) Inverse(before Recipe) Patch {
	var inv Patch
	if p.Name != nil {
		inv.Name = Ptr(before.Name)
	}
	if p.Rating != nil {
		inv.Rating = Ptr(before.Rating)
	}
	if p.Cuisine != nil {
		inv.Cuisine = Ptr(before.Cuisine)
	}
	if p.CaloriesPerServing != nil {
		inv.CaloriesPerServing = Ptr(before.CaloriesPerServing)
	}
	if p.Servings != nil {
		inv.Servings = Ptr(before.Servings)
	}
	if p.PrepTimeMinutes != nil {
		inv.PrepTimeMinutes = Ptr(before.PrepTimeMinutes)
	}
	if p.CookTimeMinutes != nil {
		inv.CookTimeMinutes = Ptr(before.CookTimeMinutes)
	}
	if p.Difficulty != nil {
		inv.Difficulty = Ptr(before.Difficulty)
	}
	if p.Tags != nil {
		tags := cloneStrings(before.Tags)
		inv.Tags = &tags
	}
	return inv
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T { return &v }

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
