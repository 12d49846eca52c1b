package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuery() VisibilityQuery {
	return VisibilityQuery{
		Text:          "best air purifier 2025",
		Category:      CategoryProductComparison,
		Priority:      PriorityHigh,
		TrackedBrands: []string{"Levoit", "Dyson", "Coway", "Honeywell"},
		Active:        true,
	}
}

func TestCategory_IsValid(t *testing.T) {
	for _, c := range AllCategories() {
		assert.True(t, c.IsValid(), c.String())
	}
	assert.False(t, Category("news").IsValid())
	assert.False(t, Category("").IsValid())
}

func TestPriority_IsValid(t *testing.T) {
	assert.True(t, PriorityHigh.IsValid())
	assert.True(t, PriorityMedium.IsValid())
	assert.True(t, PriorityLow.IsValid())
	assert.False(t, Priority("urgent").IsValid())
}

func TestVisibilityQuery_PrimaryAndCompetitors(t *testing.T) {
	q := validQuery()

	assert.Equal(t, "Levoit", q.PrimaryBrand())
	assert.Equal(t, []string{"Dyson", "Coway", "Honeywell"}, q.Competitors())
	assert.True(t, q.Tracks("Coway"))
	assert.False(t, q.Tracks("Blueair"))

	// Competitors returns a copy
	c := q.Competitors()
	c[0] = "Changed"
	assert.Equal(t, "Dyson", q.TrackedBrands[1])
}

func TestVisibilityQuery_SingleBrand(t *testing.T) {
	q := VisibilityQuery{TrackedBrands: []string{"Levoit"}}
	assert.Equal(t, "Levoit", q.PrimaryBrand())
	assert.Nil(t, q.Competitors())

	empty := VisibilityQuery{}
	assert.Equal(t, "", empty.PrimaryBrand())
}

func TestVisibilityQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *VisibilityQuery)
		primary string
		field   string
	}{
		{"valid", func(q *VisibilityQuery) {}, "Levoit", ""},
		{"empty text", func(q *VisibilityQuery) { q.Text = "  " }, "", "query_text"},
		{"bad category", func(q *VisibilityQuery) { q.Category = "x" }, "", "category"},
		{"bad priority", func(q *VisibilityQuery) { q.Priority = "x" }, "", "priority"},
		{"no brands", func(q *VisibilityQuery) { q.TrackedBrands = nil }, "", "brands"},
		{"blank brand", func(q *VisibilityQuery) { q.TrackedBrands = []string{"Levoit", ""} }, "", "brands"},
		{"duplicate brand", func(q *VisibilityQuery) { q.TrackedBrands = []string{"Levoit", "Levoit"} }, "", "brands"},
		{"primary missing", func(q *VisibilityQuery) { q.TrackedBrands = []string{"Dyson"} }, "Levoit", "brands"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuery()
			tt.mutate(&q)
			err := q.Validate(tt.primary)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestOrderBrands(t *testing.T) {
	brands := []string{"Dyson", "Levoit", "Coway"}

	assert.Equal(t, []string{"Levoit", "Dyson", "Coway"}, OrderBrands(brands, "Levoit"))
	assert.Equal(t, []string{"Dyson", "Levoit", "Coway"}, OrderBrands(brands, ""))
	assert.Equal(t, []string{"Dyson", "Levoit", "Coway"}, brands, "input must not be modified")
}

func TestQueryFilter_Matches(t *testing.T) {
	q := validQuery()
	cat := CategoryProductComparison
	other := CategoryGeneral
	prio := PriorityHigh
	active := true
	inactive := false

	assert.True(t, QueryFilter{}.Matches(&q))
	assert.True(t, QueryFilter{Category: &cat}.Matches(&q))
	assert.False(t, QueryFilter{Category: &other}.Matches(&q))
	assert.True(t, QueryFilter{Category: &cat, Priority: &prio, Active: &active}.Matches(&q))
	assert.False(t, QueryFilter{Category: &cat, Active: &inactive}.Matches(&q), "filters are conjunctive")
}

func TestQueryFilter_Validate(t *testing.T) {
	bad := Category("unknown")
	badPrio := Priority("none")

	assert.NoError(t, QueryFilter{}.Validate())
	assert.ErrorIs(t, QueryFilter{Category: &bad}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, QueryFilter{Priority: &badPrio}.Validate(), ErrInvalidInput)
}

func TestQueryUpdate_IsEmpty(t *testing.T) {
	assert.True(t, QueryUpdate{}.IsEmpty())
	text := "new"
	assert.False(t, QueryUpdate{Text: &text}.IsEmpty())
	assert.False(t, QueryUpdate{Brands: []string{"Levoit"}}.IsEmpty())
}
