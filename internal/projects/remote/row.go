package remote

import (
	"encoding/json"
	"time"

	"github.com/collabhub/collabhub-backend/internal/projects/domain"
)

const (
	summaryMaxRunes    = 500
	defaultCreatorName = "Creator"
)

// Row is one record of the remote projects table, snake_case as stored.
// Roadmap and TeamMembers are jsonb and decoded leniently.
type Row struct {
	ID             string          `json:"id,omitempty"`
	CreatorID      string          `json:"creator_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Summary        string          `json:"summary"`
	Category       string          `json:"category"`
	Tags           []string        `json:"tags"`
	Deadline       *time.Time      `json:"deadline"`
	Status         string          `json:"status"`
	ApprovalStatus string          `json:"approval_status,omitempty"`
	CoverImage     string          `json:"cover_image"`
	ImageURLs      []string        `json:"image_urls"`
	VideoURL       string          `json:"video_url"`
	WebsiteURL     string          `json:"website_url"`
	GithubURL      string          `json:"github_url,omitempty"`
	Roadmap        json.RawMessage `json:"roadmap,omitempty"`
	TeamMembers    json.RawMessage `json:"team_members,omitempty"`
	Requirements   string          `json:"requirements"`
	Featured       bool            `json:"featured"`
	Views          int             `json:"views"`
	Likes          int             `json:"likes"`
	CommentCount   int             `json:"comment_count"`
	ShareCount     int             `json:"share_count"`
	BookmarkCount  int             `json:"bookmark_count"`
	CreatedAt      *time.Time      `json:"created_at,omitempty"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

// RowFromRecord maps a canonical record to the remote schema. The id is
// carried over when it is a UUID so both stores share it.
func RowFromRecord(rec domain.ProjectRecord) Row {
	row := Row{
		CreatorID:    rec.CreatorID,
		Title:        rec.Title,
		Description:  rec.Description,
		Summary:      summarize(rec),
		Category:     rec.Category,
		Tags:         nonNilStrings(rec.Tags),
		Deadline:     rec.Deadline,
		Status:       string(rec.Status),
		CoverImage:   rec.PrimaryImage(),
		ImageURLs:    nonNilStrings(rec.ImageURLs),
		VideoURL:     rec.VideoURL,
		WebsiteURL:   rec.DemoURL,
		Roadmap:      mustJSON(nonNilRoadmap(rec.Roadmap)),
		TeamMembers:  mustJSON(nonNilTiers(rec.FundingTiers)),
		Requirements: rec.LongDescription,
		Views:        rec.Views,
		Likes:        rec.Likes,
		CommentCount: rec.Comments,
	}
	if domain.IsUUID(rec.ID) {
		row.ID = rec.ID
	}
	if !rec.CreatedAt.IsZero() {
		t := rec.CreatedAt.UTC()
		row.CreatedAt = &t
	}
	if !rec.UpdatedAt.IsZero() {
		t := rec.UpdatedAt.UTC()
		row.UpdatedAt = &t
	}
	return row
}

// Record maps a remote row back to the canonical shape, defaulting absent
// collections to empty and absent counters to zero.
func (r Row) Record() domain.ProjectRecord {
	long := r.Requirements
	if long == "" {
		long = r.Summary
	}
	if long == "" {
		long = r.Description
	}

	images := nonNilStrings(r.ImageURLs)
	if len(images) == 0 && r.CoverImage != "" {
		images = []string{r.CoverImage}
	}

	rec := domain.ProjectRecord{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		LongDescription: long,
		Category:        r.Category,
		Tags:            nonNilStrings(r.Tags),
		Status:          domain.Status(r.Status),
		CreatorID:       r.CreatorID,
		CreatorName:     defaultCreatorName,
		ImageURLs:       images,
		VideoURL:        r.VideoURL,
		DemoURL:         r.WebsiteURL,
		Deadline:        r.Deadline,
		Roadmap:         decodeRoadmap(r.Roadmap),
		Milestones:      []domain.RoadmapItem{},
		FundingTiers:    decodeTiers(r.TeamMembers),
		Views:           r.Views,
		Likes:           r.Likes,
		Comments:        r.CommentCount,
	}
	if r.CreatedAt != nil {
		rec.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		rec.UpdatedAt = *r.UpdatedAt
	} else {
		rec.UpdatedAt = rec.CreatedAt
	}
	rec.Normalize()
	return rec
}

// mutableColumns are the columns an update may touch. Counters, approval
// state and created_at belong to the remote side once the row exists.
func (r Row) mutableColumns() map[string]interface{} {
	cols := map[string]interface{}{
		"title":        r.Title,
		"description":  r.Description,
		"summary":      r.Summary,
		"category":     r.Category,
		"tags":         r.Tags,
		"deadline":     r.Deadline,
		"status":       r.Status,
		"cover_image":  r.CoverImage,
		"image_urls":   r.ImageURLs,
		"video_url":    r.VideoURL,
		"website_url":  r.WebsiteURL,
		"roadmap":      r.Roadmap,
		"team_members": r.TeamMembers,
		"requirements": r.Requirements,
	}
	if r.UpdatedAt != nil {
		cols["updated_at"] = *r.UpdatedAt
	}
	return cols
}

func summarize(rec domain.ProjectRecord) string {
	src := rec.LongDescription
	if src == "" {
		src = rec.Description
	}
	runes := []rune(src)
	if len(runes) > summaryMaxRunes {
		return string(runes[:summaryMaxRunes])
	}
	return src
}

func decodeRoadmap(raw json.RawMessage) []domain.RoadmapItem {
	var items []domain.RoadmapItem
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return []domain.RoadmapItem{}
	}
	return items
}

func decodeTiers(raw json.RawMessage) []domain.FundingTier {
	var tiers []domain.FundingTier
	if len(raw) == 0 || json.Unmarshal(raw, &tiers) != nil || tiers == nil {
		return []domain.FundingTier{}
	}
	return tiers
}

func mustJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("[]")
	}
	return b
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilRoadmap(in []domain.RoadmapItem) []domain.RoadmapItem {
	if in == nil {
		return []domain.RoadmapItem{}
	}
	return in
}

func nonNilTiers(in []domain.FundingTier) []domain.FundingTier {
	if in == nil {
		return []domain.FundingTier{}
	}
	return in
}
