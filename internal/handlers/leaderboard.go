package handlers

import (
	"net/http"
	"net/url"

	"github.com/mettlestate/tournament-site/internal/logic"
)

// GetLeaderboard handles GET /api/v1/leaderboard
// @Summary Leaderboard
// @Description Scored players with display order, filter, top three and loader state. Rank and badges follow points, not display order.
// @Tags Leaderboard
// @Produce json
// @Param sort query string false "points or handle" default(points)
// @Param order query string false "asc or desc" default(desc)
// @Param q query string false "Case-insensitive filter on handle or name"
// @Success 200 {object} models.LeaderboardView
// @Failure 400 {object} models.ErrorResponse
// @Router /leaderboard [get]
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	// r.URL.Query drops malformed pairs; reject them instead.
	q, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "malformed query string")
		return
	}
	opts, err := logic.ParseViewOptions(q.Get("sort"), q.Get("order"), q.Get("q"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	h.jsonResponse(w, http.StatusOK, h.leaderboard.View(opts))
}

// RetryLeaderboard handles POST /api/v1/leaderboard/retry
// @Summary Retry loading the leaderboard
// @Description Abandons any pending automatic retry and starts a fresh load.
// @Tags Leaderboard
// @Produce json
// @Success 202 {object} models.LeaderboardState
// @Router /leaderboard/retry [post]
func (h *Handler) RetryLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.leaderboard.Retry()
	h.logger.Infow("Leaderboard retry requested", "remote", r.RemoteAddr)
	h.jsonResponse(w, http.StatusAccepted, h.leaderboard.State())
}
