package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/mettlestate/tournament-site/internal/logic"
	"github.com/mettlestate/tournament-site/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Content     models.SiteContent
	Stats       models.RegistrationStats
	Countdown   models.Countdown
	Leaderboard models.LeaderboardView
}

// GetContent handles GET /api/v1/content
// @Summary Static page sections
// @Tags Content
// @Produce json
// @Success 200 {object} models.SiteContent
// @Router /content [get]
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.content.Content())
}

// GetCountdown handles GET /api/v1/countdown
// @Summary Time left until the event starts
// @Tags Content
// @Produce json
// @Success 200 {object} models.Countdown
// @Router /countdown [get]
func (h *Handler) GetCountdown(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.content.Countdown(h.now()))
}

// Index renders the landing page. The leaderboard honours the same sort,
// order and q parameters as the API; invalid values fall back to defaults.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	var opts logic.ViewOptions
	if q, err := url.ParseQuery(r.URL.RawQuery); err == nil {
		if parsed, err := logic.ParseViewOptions(q.Get("sort"), q.Get("order"), q.Get("q")); err == nil {
			opts = parsed
		}
	}

	data := pageData{
		Content:     h.content.Content(),
		Stats:       logic.ComputeStats(h.counter.Read(), h.maxRegistrations),
		Countdown:   h.content.Countdown(h.now()),
		Leaderboard: h.leaderboard.View(opts),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Errorw("Failed to render landing page", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
