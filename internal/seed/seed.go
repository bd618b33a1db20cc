// Package seed loads project fixtures from YAML and saves them through the
// regular dual-write path.
package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/collabhub/collabhub-backend/internal/projects/domain"
)

type File struct {
	Projects []Project `yaml:"projects"`
}

type Project struct {
	ID              string               `yaml:"id"`
	Title           string               `yaml:"title"`
	Description     string               `yaml:"description"`
	LongDescription string               `yaml:"long_description"`
	Category        string               `yaml:"category"`
	Tags            []string             `yaml:"tags"`
	Status          string               `yaml:"status"`
	CreatorID       string               `yaml:"creator_id"`
	CreatorName     string               `yaml:"creator_name"`
	ImageURLs       []string             `yaml:"image_urls"`
	VideoURL        string               `yaml:"video_url"`
	DemoURL         string               `yaml:"demo_url"`
	Deadline        *time.Time           `yaml:"deadline"`
	Roadmap         []domain.RoadmapItem `yaml:"roadmap"`
	Milestones      []domain.RoadmapItem `yaml:"milestones"`
	FundingTiers    []domain.FundingTier `yaml:"funding_tiers"`
}

func (p Project) Input() domain.SaveInput {
	return domain.SaveInput{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Category:        p.Category,
		Tags:            p.Tags,
		Status:          domain.Status(p.Status),
		CreatorID:       p.CreatorID,
		CreatorName:     p.CreatorName,
		ImageURLs:       p.ImageURLs,
		VideoURL:        p.VideoURL,
		DemoURL:         p.DemoURL,
		Deadline:        p.Deadline,
		Roadmap:         p.Roadmap,
		Milestones:      p.Milestones,
		FundingTiers:    p.FundingTiers,
	}
}

func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// Saver is implemented by service.ProjectService.
type Saver interface {
	Save(ctx context.Context, in domain.SaveInput) (*domain.SaveResult, error)
}

type Report struct {
	Saved    int
	Warnings int
	Failed   int
}

// Run saves every fixture in order. A failing fixture is logged and counted;
// it does not stop the run.
func Run(ctx context.Context, saver Saver, f *File, log *logrus.Logger) (Report, error) {
	var rep Report
	for i, p := range f.Projects {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		entry := log.WithFields(logrus.Fields{"index": i, "title": p.Title})

		res, err := saver.Save(ctx, p.Input())
		if err != nil {
			rep.Failed++
			entry.WithError(err).Warn("seed: project not saved")
			continue
		}
		rep.Saved++
		if res.Warning != "" {
			rep.Warnings++
			entry.WithField("warning", res.Warning).Warn("seed: saved locally only")
			continue
		}
		entry.WithField("id", res.Project.ID).Info("seed: project saved")
	}
	return rep, nil
}
