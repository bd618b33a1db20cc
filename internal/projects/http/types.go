package http

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/internal/projects/domain"
	"github.com/collabhub/collabhub-backend/internal/projects/engagement"
)

// ProjectService is the part of service.ProjectService the handlers use.
type ProjectService interface {
	Save(ctx context.Context, in domain.SaveInput) (*domain.SaveResult, error)
	LoadAll(ctx context.Context) ([]domain.ProjectRecord, error)
	Get(ctx context.Context, id string) (*domain.ProjectRecord, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc     ProjectService
	overlay *engagement.Overlay
	log     *logrus.Logger
}

func New(svc ProjectService, overlay *engagement.Overlay, log *logrus.Logger) *Handler {
	if overlay == nil {
		overlay = engagement.NewOverlay()
	}
	return &Handler{svc: svc, overlay: overlay, log: log}
}
