package domain

import (
	"strings"
	"time"
)

// Category classifies a monitored query by search intent.
type Category string

// Available query categories.
const (
	CategoryProductComparison Category = "product_comparison"
	CategoryBrandSearch       Category = "brand_search"
	CategoryCategorySearch    Category = "category_search"
	CategoryGeneral           Category = "general"
)

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryProductComparison, CategoryBrandSearch, CategoryCategorySearch, CategoryGeneral:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// AllCategories returns every query category.
func AllCategories() []Category {
	return []Category{CategoryProductComparison, CategoryBrandSearch, CategoryCategorySearch, CategoryGeneral}
}

// Priority ranks how closely a query is monitored.
type Priority string

// Available query priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid returns true if the priority is recognised.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p Priority) String() string {
	return string(p)
}

// VisibilityQuery is a monitored search query.
type VisibilityQuery struct {
	// ID is the unique identifier, assigned by the store.
	ID int64

	// Text is the query as sent to AI-answer platforms.
	Text string

	// Category classifies the query intent.
	Category Category

	// Priority ranks the query for monitoring.
	Priority Priority

	// TrackedBrands is the ordered brand set. The first entry is the
	// primary brand. Changing it breaks trend continuity.
	TrackedBrands []string

	// Active is false once the query has been soft-deleted.
	Active bool

	// CreatedAt is when the query was created.
	CreatedAt time.Time

	// UpdatedAt is when the query was last modified.
	UpdatedAt time.Time

	// LatestScore is the primary brand's raw visibility score, when known.
	LatestScore *float64
}

// PrimaryBrand returns the brand competitive gaps are measured for.
func (q *VisibilityQuery) PrimaryBrand() string {
	if len(q.TrackedBrands) == 0 {
		return ""
	}
	return q.TrackedBrands[0]
}

// Competitors returns every tracked brand except the primary one.
func (q *VisibilityQuery) Competitors() []string {
	if len(q.TrackedBrands) <= 1 {
		return nil
	}
	out := make([]string, len(q.TrackedBrands)-1)
	copy(out, q.TrackedBrands[1:])
	return out
}

// Tracks reports whether brand belongs to the tracked set.
func (q *VisibilityQuery) Tracks(brand string) bool {
	for _, b := range q.TrackedBrands {
		if b == brand {
			return true
		}
	}
	return false
}

// Validate checks the query's invariants. When primaryBrand is non-empty
// it must be one of the tracked brands.
func (q *VisibilityQuery) Validate(primaryBrand string) error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("query_text", "must not be empty")
	}
	if !q.Category.IsValid() {
		return NewValidationError("category", "unknown category "+q.Category.String())
	}
	if !q.Priority.IsValid() {
		return NewValidationError("priority", "unknown priority "+q.Priority.String())
	}
	return ValidateBrands(q.TrackedBrands, primaryBrand)
}

// ValidateBrands checks a tracked brand set: non-empty, no blanks, no
// duplicates, primary brand present when configured.
func ValidateBrands(brands []string, primaryBrand string) error {
	if len(brands) == 0 {
		return NewValidationError("brands", "at least one brand is required")
	}
	seen := make(map[string]struct{}, len(brands))
	for _, b := range brands {
		if strings.TrimSpace(b) == "" {
			return NewValidationError("brands", "brand names must not be empty")
		}
		if _, dup := seen[b]; dup {
			return NewValidationError("brands", "duplicate brand "+b)
		}
		seen[b] = struct{}{}
	}
	if primaryBrand != "" {
		if _, ok := seen[primaryBrand]; !ok {
			return NewValidationError("brands", "primary brand "+primaryBrand+" must be tracked")
		}
	}
	return nil
}

// OrderBrands returns a copy of brands with primaryBrand moved to the front.
func OrderBrands(brands []string, primaryBrand string) []string {
	out := make([]string, 0, len(brands))
	if primaryBrand != "" {
		for _, b := range brands {
			if b == primaryBrand {
				out = append(out, b)
				break
			}
		}
	}
	for _, b := range brands {
		if primaryBrand != "" && b == primaryBrand {
			continue
		}
		out = append(out, b)
	}
	return out
}

// QueryFilter narrows a registry listing. Nil fields are not applied;
// set fields are combined conjunctively.
type QueryFilter struct {
	Category *Category
	Priority *Priority
	Active   *bool
}

// Validate rejects unknown enum values.
func (f QueryFilter) Validate() error {
	if f.Category != nil && !f.Category.IsValid() {
		return NewValidationError("category", "unknown category "+f.Category.String())
	}
	if f.Priority != nil && !f.Priority.IsValid() {
		return NewValidationError("priority", "unknown priority "+f.Priority.String())
	}
	return nil
}

// Matches reports whether q satisfies every set filter field.
func (f QueryFilter) Matches(q *VisibilityQuery) bool {
	if f.Category != nil && q.Category != *f.Category {
		return false
	}
	if f.Priority != nil && q.Priority != *f.Priority {
		return false
	}
	if f.Active != nil && q.Active != *f.Active {
		return false
	}
	return true
}

// QueryCreate holds the operator-supplied fields of a new query.
// Empty category and priority take their defaults.
type QueryCreate struct {
	Text     string
	Category Category
	Priority Priority
	Brands   []string
}

// QueryUpdate is a partial update; nil fields are left unchanged.
type QueryUpdate struct {
	Text     *string
	Category *Category
	Priority *Priority
	Brands   []string
	Active   *bool
}

// IsEmpty reports whether the update changes nothing.
func (u QueryUpdate) IsEmpty() bool {
	return u.Text == nil && u.Category == nil && u.Priority == nil && u.Brands == nil && u.Active == nil
}
