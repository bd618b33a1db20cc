package domain

import (
	"strings"
	"time"
)

// Status is the lifecycle label of a project. Transitions are not enforced.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ApprovalStatus is the moderation state kept by the remote store only.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// AnonymousCreator is the placeholder creator id used before sign-in.
const AnonymousCreator = "anonymous"

// DefaultCategory is applied when a project is saved without one.
const DefaultCategory = "Other"

// RoadmapItem is a milestone-like entry on a project's roadmap.
type RoadmapItem struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty" yaml:"due_date"`
	Completed   bool       `json:"completed" yaml:"completed"`
}

// FundingTier survives from the crowdfunding era of the product. Remote rows
// store these under team_members.
type FundingTier struct {
	Name        string  `json:"name" yaml:"name"`
	Amount      float64 `json:"amount,omitempty" yaml:"amount"`
	Description string  `json:"description,omitempty" yaml:"description"`
}

// ProjectRecord is the canonical project entity shared by both stores.
// It is intentionally storage-agnostic and used across cache, remote and HTTP layers.
type ProjectRecord struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	LongDescription string        `json:"longDescription"`
	Category        string        `json:"category"`
	Tags            []string      `json:"tags"`
	Status          Status        `json:"status"`
	CreatorID       string        `json:"creatorId"`
	CreatorName     string        `json:"creatorName"`
	ImageURLs       []string      `json:"imageUrls"`
	VideoURL        string        `json:"videoUrl,omitempty"`
	DemoURL         string        `json:"demoUrl,omitempty"`
	Deadline        *time.Time    `json:"deadline,omitempty"`
	Roadmap         []RoadmapItem `json:"roadmap"`
	Milestones      []RoadmapItem `json:"milestones"`
	FundingTiers    []FundingTier `json:"fundingTiers"`
	Views           int           `json:"views"`
	Likes           int           `json:"likes"`
	Comments        int           `json:"comments"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// PrimaryImage returns the cover image, if any.
func (p ProjectRecord) PrimaryImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

// TeamSize is derived from the number of funding tiers, never below one.
func (p ProjectRecord) TeamSize() int {
	if n := len(p.FundingTiers); n > 1 {
		return n
	}
	return 1
}

// HasCreator reports whether the record can be attributed to a real user.
func (p ProjectRecord) HasCreator() bool {
	id := strings.TrimSpace(p.CreatorID)
	return id != "" && id != AnonymousCreator
}

// TitleKey is the normalised title used for case-insensitive joins.
func TitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Normalize fills defaults so both stores always see complete collections.
func (p *ProjectRecord) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	if p.Roadmap == nil {
		p.Roadmap = []RoadmapItem{}
	}
	if p.Milestones == nil {
		p.Milestones = []RoadmapItem{}
	}
	if p.FundingTiers == nil {
		p.FundingTiers = []FundingTier{}
	}
}

// SaveInput is what a caller hands to the save path. ID is optional; when set
// the existing record with that id is replaced.
type SaveInput struct {
	ID              string        `json:"id,omitempty"`
	Title           string        `json:"title" validate:"required,max=200"`
	Description     string        `json:"description" validate:"max=5000"`
	LongDescription string        `json:"longDescription" validate:"max=20000"`
	Category        string        `json:"category" validate:"max=100"`
	Tags            []string      `json:"tags" validate:"max=20,dive,max=50"`
	Status          Status        `json:"status" validate:"omitempty,oneof=draft pending active completed cancelled"`
	CreatorID       string        `json:"creatorId"`
	CreatorName     string        `json:"creatorName"`
	ImageURLs       []string      `json:"imageUrls" validate:"max=10,dive,url"`
	VideoURL        string        `json:"videoUrl" validate:"omitempty,url"`
	DemoURL         string        `json:"demoUrl" validate:"omitempty,url"`
	Deadline        *time.Time    `json:"deadline,omitempty"`
	Roadmap         []RoadmapItem `json:"roadmap"`
	Milestones      []RoadmapItem `json:"milestones"`
	FundingTiers    []FundingTier `json:"fundingTiers"`
}

// Record converts the input into an unsaved record. Counters start at zero.
func (in SaveInput) Record() ProjectRecord {
	rec := ProjectRecord{
		ID:              in.ID,
		Title:           in.Title,
		Description:     in.Description,
		LongDescription: in.LongDescription,
		Category:        in.Category,
		Tags:            in.Tags,
		Status:          in.Status,
		CreatorID:       strings.TrimSpace(in.CreatorID),
		CreatorName:     in.CreatorName,
		ImageURLs:       in.ImageURLs,
		VideoURL:        in.VideoURL,
		DemoURL:         in.DemoURL,
		Deadline:        in.Deadline,
		Roadmap:         in.Roadmap,
		Milestones:      in.Milestones,
		FundingTiers:    in.FundingTiers,
	}
	rec.Normalize()
	return rec
}

// SaveResult is the composite outcome of a dual write. Success reflects the
// local write only; remote trouble shows up in Warning.
type SaveResult struct {
	Success  bool           `json:"success"`
	Project  *ProjectRecord `json:"project,omitempty"`
	RemoteID string         `json:"remoteId,omitempty"`
	Warning  string         `json:"warning,omitempty"`
	Error    string         `json:"error,omitempty"`
	// Replaced is set when an existing record was overwritten.
	Replaced bool `json:"replaced"`
}
