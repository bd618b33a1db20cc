package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/collabhub/collabhub-backend/internal/auth"
	"github.com/collabhub/collabhub-backend/internal/logging"
	"github.com/collabhub/collabhub-backend/internal/projects/domain"
	"github.com/collabhub/collabhub-backend/internal/projects/listing"
)

func (h *Handler) save(c *gin.Context) {
	var in domain.SaveInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	// the creator is whoever is signed in, never what the body claims
	id := auth.CurrentIdentity(c)
	if id.IsAnonymous() {
		in.CreatorID = domain.AnonymousCreator
	} else {
		in.CreatorID = id.UserID
		if strings.TrimSpace(in.CreatorName) == "" {
			in.CreatorName = id.Name()
		}
	}

	res, err := h.svc.Save(c.Request.Context(), in)
	if err != nil {
		msg := err.Error()
		if res != nil && res.Error != "" {
			msg = res.Error
		}
		c.JSON(statusFor(err), gin.H{"ok": false, "error": msg})
		return
	}

	body := gin.H{"ok": true, "project": res.Project}
	if res.RemoteID != "" {
		body["remote_id"] = res.RemoteID
	}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	status := http.StatusCreated
	if res.Replaced {
		status = http.StatusOK
	}
	c.JSON(status, body)
}

func (h *Handler) list(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	all, err := h.svc.LoadAll(c.Request.Context())
	if err != nil {
		logging.FromContext(c.Request.Context(), h.log).LogError("list_projects", err)
		c.JSON(statusFor(err), gin.H{"ok": false, "error": "failed to load projects"})
		return
	}

	page := listing.Apply(all, q)
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"projects": h.overlay.Decorate(page.Items, viewerID(c)),
		"total":    page.Total,
	})
}

func (h *Handler) categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "categories": listing.Categories})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(statusFor(err), gin.H{"ok": false, "error": "failed to load project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": h.overlay.DecorateOne(*p, viewerID(c))})
}

func (h *Handler) like(c *gin.Context) {
	h.toggle(c, "liked", h.overlay.ToggleLike)
}

func (h *Handler) bookmark(c *gin.Context) {
	h.toggle(c, "bookmarked", h.overlay.ToggleBookmark)
}

func (h *Handler) toggle(c *gin.Context, key string, flip func(projectID, userID string) (bool, int)) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(statusFor(err), gin.H{"ok": false, "error": "failed to load project"})
		return
	}

	uid := auth.UserID(c)
	on, _ := flip(p.ID, uid)
	c.JSON(http.StatusOK, gin.H{"ok": true, key: on, "project": h.overlay.DecorateOne(*p, uid)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func viewerID(c *gin.Context) string {
	id := auth.CurrentIdentity(c)
	if id.IsAnonymous() {
		return ""
	}
	return id.UserID
}

func parseQuery(c *gin.Context) (listing.Query, error) {
	q := listing.Query{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Sort:     c.Query("sort"),
	}
	if !listing.ValidSort(q.Sort) {
		return q, fmt.Errorf("unknown sort %q", q.Sort)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"team_size_min", &q.TeamSizeMin},
		{"team_size_max", &q.TeamSizeMax},
		{"limit", &q.Limit},
		{"offset", &q.Offset},
	}
	for _, p := range ints {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, fmt.Errorf("%s must be a non-negative integer", p.name)
		}
		*p.dst = n
	}

	return q, nil
}
