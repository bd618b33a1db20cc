package listing

import (
	"sort"
	"strings"

	"github.com/collabhub/collabhub-backend/internal/projects/domain"
)

const (
	CategoryAll = "All"
	StatusAll   = "all"

	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortPopular  = "popular"
	SortDeadline = "deadline"
	SortTeamSize = "team-size"

	MinTeamSize = 1
	MaxTeamSize = 50
)

// Categories is the fixed set offered to clients, "All" first.
var Categories = []string{
	CategoryAll,
	"Technology",
	"Healthcare",
	"Education",
	"Environment",
	"Gaming",
	"AI/ML",
	"Blockchain",
	"IoT",
	"Mobile App",
	"Web Development",
	"Hardware",
	"Research",
	"Social Impact",
	"Entertainment",
	"Other",
}

// Query describes what a listing caller wants to see. Zero values mean
// "no filter", except Status which defaults to active projects.
type Query struct {
	Search      string
	Category    string
	Status      string
	TeamSizeMin int
	TeamSizeMax int
	Sort        string
	Limit       int
	Offset      int
}

// Page is one window of the filtered, sorted listing.
type Page struct {
	Items []domain.ProjectRecord `json:"items"`
	Total int                    `json:"total"`
}

// ValidSort reports whether s names a supported ordering.
func ValidSort(s string) bool {
	switch s {
	case "", SortNewest, SortOldest, SortPopular, SortDeadline, SortTeamSize:
		return true
	}
	return false
}

// Apply filters, sorts and paginates records. The input is not modified.
func Apply(records []domain.ProjectRecord, q Query) Page {
	q = q.normalized()

	matched := make([]domain.ProjectRecord, 0, len(records))
	for _, p := range records {
		if q.matches(p) {
			matched = append(matched, p)
		}
	}

	sortRecords(matched, q.Sort)

	total := len(matched)
	start := q.Offset
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < total {
		end = start + q.Limit
	}

	return Page{Items: matched[start:end], Total: total}
}

func (q Query) normalized() Query {
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))
	q.Category = strings.TrimSpace(q.Category)
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	if q.Status == "" {
		q.Status = string(domain.StatusActive)
	}
	if q.TeamSizeMin < MinTeamSize {
		q.TeamSizeMin = MinTeamSize
	}
	if q.TeamSizeMax <= 0 || q.TeamSizeMax > MaxTeamSize {
		q.TeamSizeMax = MaxTeamSize
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

func (q Query) matches(p domain.ProjectRecord) bool {
	if q.Category != "" && q.Category != CategoryAll && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.Status != StatusAll && string(p.Status) != q.Status {
		return false
	}
	if size := p.TeamSize(); size < q.TeamSizeMin || size > q.TeamSizeMax {
		return false
	}
	if q.Search == "" {
		return true
	}

	if strings.Contains(strings.ToLower(p.Title), q.Search) ||
		strings.Contains(strings.ToLower(p.Description), q.Search) ||
		strings.Contains(strings.ToLower(p.CreatorName), q.Search) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q.Search) {
			return true
		}
	}
	return false
}

func sortRecords(items []domain.ProjectRecord, by string) {
	var less func(a, b domain.ProjectRecord) bool

	switch by {
	case SortOldest:
		less = func(a, b domain.ProjectRecord) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortPopular:
		less = func(a, b domain.ProjectRecord) bool { return a.Likes > b.Likes }
	case SortDeadline:
		// soonest first, open-ended projects last
		less = func(a, b domain.ProjectRecord) bool {
			switch {
			case a.Deadline == nil:
				return false
			case b.Deadline == nil:
				return true
			default:
				return a.Deadline.Before(*b.Deadline)
			}
		}
	case SortTeamSize:
		less = func(a, b domain.ProjectRecord) bool { return a.TeamSize() > b.TeamSize() }
	default:
		less = func(a, b domain.ProjectRecord) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
