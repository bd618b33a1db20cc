package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/internal/auth"
	"github.com/collabhub/collabhub-backend/internal/auth/middleware"
	"github.com/collabhub/collabhub-backend/internal/logging"
	"github.com/collabhub/collabhub-backend/internal/uploads"
)

// multipart framing allowance on top of the file itself
const formOverhead = 1 << 20

type Uploader interface {
	Upload(ctx context.Context, ownerID string, r io.Reader) (*uploads.Image, error)
}

type Handler struct {
	uploader Uploader
	log      *logrus.Logger
}

func New(uploader Uploader, log *logrus.Logger) *Handler {
	return &Handler{uploader: uploader, log: log}
}

// Register attaches upload routes. Uploads require a signed-in user.
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	handlers := append([]gin.HandlerFunc{middleware.RequireUser()}, write...)
	rg.POST("/images", append(handlers, h.uploadImage)...)
}

// uploadImage expects a multipart form with the image in the "file" field.
func (h *Handler) uploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uploads.MaxImageSize+formOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": uploads.ErrTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file is required"})
		return
	}
	if fh.Size > uploads.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": uploads.ErrTooLarge.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable file"})
		return
	}
	defer f.Close()

	img, err := h.uploader.Upload(c.Request.Context(), auth.UserID(c), f)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"ok": true, "image": img})
	case errors.Is(err, uploads.ErrEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, uploads.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, uploads.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.FromContext(c.Request.Context(), h.log).LogError("upload_image", err)
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "failed to store image"})
	}
}
