package http

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/instafinder/backend/internal/domain"
	"github.com/instafinder/backend/internal/render"
	"github.com/instafinder/backend/internal/usecase"
	"go.uber.org/zap"
)

const serviceVersion = "1.0.0"

// DefaultCookieName is used when HandlerConfig leaves it empty
const DefaultCookieName = "finder_session"

// HandlerConfig holds handler settings that come from configuration
type HandlerConfig struct {
	CookieName   string
	SecureCookie bool
	Render       render.Options
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sessions *usecase.SubmissionService
	logger   *zap.Logger
	config   HandlerConfig
}

// NewHandler creates a new HTTP handler. A nil service makes the page
// endpoints answer 503.
func NewHandler(sessions *usecase.SubmissionService, logger *zap.Logger, config HandlerConfig) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CookieName == "" {
		config.CookieName = DefaultCookieName
	}
	return &Handler{
		sessions: sessions,
		logger:   logger.Named("http"),
		config:   config,
	}
}

// submitRequest is the JSON form of the submit trigger
type submitRequest = domain.AnalysisRequest

// stateResponse is the JSON snapshot of a session
type stateResponse struct {
	Status  string                    `json:"status"`
	URL     string                    `json:"url,omitempty"`
	Results []domain.ObjectMatchGroup `json:"results"`
	Error   *string                   `json:"error"`
}

func newStateResponse(state domain.SubmissionState) stateResponse {
	resp := stateResponse{
		Status:  state.Status().String(),
		URL:     state.URL(),
		Results: state.Results(),
	}
	if state.Status() == domain.StatusFailed {
		msg := state.Error()
		resp.Error = &msg
	}
	return resp
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "instagram-product-finder",
		"version": serviceVersion,
	})
}

// Index renders the page for the caller's session
func (h *Handler) Index(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.renderPage(c, http.StatusOK, render.Build(session.State(), h.config.Render))
}

// Submit starts a submission from the form (or a JSON body) and redirects
// back to the page, which shows the loading state until the result arrives
func (h *Handler) Submit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	wantsJSON := strings.HasPrefix(c.ContentType(), "application/json")

	var rawURL string
	if wantsJSON {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: url is required"})
			return
		}
		rawURL = req.URL
	} else {
		rawURL = c.PostForm("url")
	}

	err := session.Submit(c.Request.Context(), rawURL)
	switch {
	case err == nil:
		if wantsJSON {
			c.JSON(http.StatusAccepted, newStateResponse(session.State()))
			return
		}
		c.Redirect(http.StatusSeeOther, "/")

	case errors.Is(err, domain.ErrInvalidURL):
		if wantsJSON {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		view := render.Build(session.State(), h.config.Render).WithValidation(rawURL, render.InputTitle)
		h.renderPage(c, http.StatusBadRequest, view)

	case errors.Is(err, domain.ErrSubmissionInFlight), errors.Is(err, domain.ErrSessionClosed):
		if wantsJSON {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.renderPage(c, http.StatusConflict, render.Build(session.State(), h.config.Render))

	default:
		h.logger.Error("submit failed", zap.String("session", session.ID()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start submission"})
	}
}

// State returns the caller's session state as JSON
func (h *Handler) State(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newStateResponse(session.State()))
}

// EndSession tears down the caller's session
func (h *Handler) EndSession(c *gin.Context) {
	if h.sessions == nil {
		h.notConfigured(c)
		return
	}

	id, _ := c.Cookie(h.config.CookieName)
	err := h.sessions.EndSession(c.Request.Context(), id)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		h.logger.Error("failed to end session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end session"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.CookieName, "", -1, "/", "", h.config.SecureCookie, true)
	c.Status(http.StatusNoContent)
}

// session resolves the caller's session, creating it and setting the cookie
// when missing. It writes the error response itself and reports false on failure.
func (h *Handler) session(c *gin.Context) (*usecase.Session, bool) {
	if h.sessions == nil {
		h.notConfigured(c)
		return nil, false
	}

	id, _ := c.Cookie(h.config.CookieName)
	session, created, err := h.sessions.SessionOrNew(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to resolve session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
		return nil, false
	}

	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.config.CookieName, session.ID(), 0, "/", "", h.config.SecureCookie, true)
	}
	return session, true
}

func (h *Handler) renderPage(c *gin.Context, status int, view render.View) {
	var buf bytes.Buffer
	if err := render.Page(&buf, view); err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to render page")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) notConfigured(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "Submission service not configured",
	})
}
