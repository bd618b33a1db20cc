package http

import (
	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/internal/auth"
)

type Handler struct {
	verifier auth.Verifier
	sessions *auth.Sessions
	log      *logrus.Logger
}

func New(verifier auth.Verifier, sessions *auth.Sessions, log *logrus.Logger) *Handler {
	return &Handler{
		verifier: verifier,
		sessions: sessions,
		log:      log,
	}
}
