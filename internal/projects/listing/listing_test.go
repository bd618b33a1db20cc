package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabhub/collabhub-backend/internal/projects/domain"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func project(title string, daysAfter int, opts ...func(*domain.ProjectRecord)) domain.ProjectRecord {
	p := domain.ProjectRecord{
		ID:        title,
		Title:     title,
		CreatedAt: base.AddDate(0, 0, daysAfter),
	}
	for _, o := range opts {
		o(&p)
	}
	p.Normalize()
	return p
}

func titles(items []domain.ProjectRecord) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Title)
	}
	return out
}

func TestApply_Filters(t *testing.T) {
	records := []domain.ProjectRecord{
		project("Solar Kiosk", 1, func(p *domain.ProjectRecord) {
			p.Category = "Environment"
			p.Tags = []string{"solar", "IoT"}
		}),
		project("Chess AI", 2, func(p *domain.ProjectRecord) {
			p.Category = "AI/ML"
			p.CreatorName = "Grace"
		}),
		project("Old Draft", 3, func(p *domain.ProjectRecord) { p.Status = domain.StatusDraft }),
		project("Big Team", 4, func(p *domain.ProjectRecord) {
			p.FundingTiers = []domain.FundingTier{{Name: "a"}, {Name: "b"}, {Name: "c"}}
		}),
	}

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"default shows active newest first", Query{}, []string{"Big Team", "Chess AI", "Solar Kiosk"}},
		{"status all", Query{Status: "all"}, []string{"Big Team", "Old Draft", "Chess AI", "Solar Kiosk"}},
		{"status draft", Query{Status: "draft"}, []string{"Old Draft"}},
		{"category", Query{Category: "ai/ml"}, []string{"Chess AI"}},
		{"category All", Query{Category: "All"}, []string{"Big Team", "Chess AI", "Solar Kiosk"}},
		{"search tag", Query{Search: "iot"}, []string{"Solar Kiosk"}},
		{"search creator", Query{Search: "grace"}, []string{"Chess AI"}},
		{"search title case-insensitive", Query{Search: "KIOSK"}, []string{"Solar Kiosk"}},
		{"team size range", Query{TeamSizeMin: 2}, []string{"Big Team"}},
		{"team size max", Query{TeamSizeMax: 1}, []string{"Chess AI", "Solar Kiosk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Apply(records, tt.q)
			assert.Equal(t, tt.want, titles(page.Items))
			assert.Equal(t, len(tt.want), page.Total)
		})
	}
}

func TestApply_Sort(t *testing.T) {
	soon := base.AddDate(0, 1, 0)
	later := base.AddDate(0, 2, 0)

	records := []domain.ProjectRecord{
		project("A", 1, func(p *domain.ProjectRecord) { p.Likes = 5; p.Deadline = &later }),
		project("B", 2, func(p *domain.ProjectRecord) { p.Likes = 9 }),
		project("C", 3, func(p *domain.ProjectRecord) {
			p.Likes = 5
			p.Deadline = &soon
			p.FundingTiers = []domain.FundingTier{{Name: "x"}, {Name: "y"}}
		}),
	}

	assert.Equal(t, []string{"C", "B", "A"}, titles(Apply(records, Query{Sort: SortNewest}).Items))
	assert.Equal(t, []string{"A", "B", "C"}, titles(Apply(records, Query{Sort: SortOldest}).Items))
	assert.Equal(t, []string{"B", "A", "C"}, titles(Apply(records, Query{Sort: SortPopular}).Items), "ties keep input order")
	assert.Equal(t, []string{"C", "A", "B"}, titles(Apply(records, Query{Sort: SortDeadline}).Items))
	assert.Equal(t, []string{"C", "A", "B"}, titles(Apply(records, Query{Sort: SortTeamSize}).Items))
}

func TestApply_Pagination(t *testing.T) {
	var records []domain.ProjectRecord
	for i, name := range []string{"p1", "p2", "p3", "p4", "p5"} {
		records = append(records, project(name, i))
	}

	page := Apply(records, Query{Sort: SortOldest, Limit: 2, Offset: 1})
	assert.Equal(t, []string{"p2", "p3"}, titles(page.Items))
	assert.Equal(t, 5, page.Total)

	page = Apply(records, Query{Limit: 2, Offset: 10})
	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.Total)

	page = Apply(records, Query{Offset: 3, Sort: SortOldest})
	assert.Equal(t, []string{"p4", "p5"}, titles(page.Items))
}

func TestApply_DoesNotReorderInput(t *testing.T) {
	records := []domain.ProjectRecord{project("first", 1), project("second", 2)}
	_ = Apply(records, Query{})
	require.Equal(t, "first", records[0].Title)
}

func TestValidSort(t *testing.T) {
	assert.True(t, ValidSort(""))
	assert.True(t, ValidSort(SortTeamSize))
	assert.False(t, ValidSort("random"))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, CategoryAll, Categories[0])
	assert.Contains(t, Categories, domain.DefaultCategory)
}
