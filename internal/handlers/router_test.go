package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mettlestate/tournament-site/internal/logic"
	"github.com/mettlestate/tournament-site/internal/models"
)

func TestRouter_Routes(t *testing.T) {
	h, _ := testHandler(logic.NewRegistrationStore(87), logic.SimulatedRemote(time.Millisecond))
	live := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	router := NewRouter(h, RouterConfig{AllowedOrigins: []string{"http://localhost:5173"}, Live: live})

	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"GET", "/", "", http.StatusOK},
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/ready", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"GET", "/swagger/doc.json", "", http.StatusOK},
		{"GET", "/api/v1/content", "", http.StatusOK},
		{"GET", "/api/v1/countdown", "", http.StatusOK},
		{"GET", "/api/v1/registrations/count", "", http.StatusOK},
		{"POST", "/api/v1/registrations/validate", validBody, http.StatusOK},
		{"POST", "/api/v1/registrations", validBody, http.StatusCreated},
		{"GET", "/api/v1/leaderboard?sort=handle", "", http.StatusOK},
		{"POST", "/api/v1/leaderboard/retry", "", http.StatusAccepted},
		{"GET", "/ws/registrations", "", http.StatusTeapot},
		{"GET", "/api/v1/unknown", "", http.StatusNotFound},
		{"DELETE", "/api/v1/registrations", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_SwaggerDoc(t *testing.T) {
	h, _ := testHandler(logic.NewRegistrationStore(0), nil)
	router := NewRouter(h, RouterConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/doc.json", nil))

	var doc map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("swagger doc is not JSON: %v", err)
	}
	if doc["basePath"] != "/api/v1" {
		t.Errorf("basePath = %v", doc["basePath"])
	}
	paths, _ := doc["paths"].(map[string]interface{})
	if _, ok := paths["/registrations"]; !ok {
		t.Error("swagger doc missing /registrations")
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	h, _ := testHandler(logic.NewRegistrationStore(0), nil)
	router := NewRouter(h, RouterConfig{AllowedOrigins: []string{"http://localhost:5173"}})

	tests := []struct {
		origin    string
		wantAllow string
	}{
		{"http://localhost:5173", "http://localhost:5173"},
		{"http://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest("OPTIONS", "/api/v1/registrations", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "POST")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestReady_QueueSaturated(t *testing.T) {
	h, _ := testHandler(logic.NewRegistrationStore(0), nil)
	h.pool = &MockSubmissionQueue{Depth: 8}

	w := httptest.NewRecorder()
	h.Ready(w, httptest.NewRequest("GET", "/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("StatusCode = %d, want 503", w.Code)
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["ready"] != false || resp["queueDepth"] != float64(8) {
		t.Errorf("resp = %v", resp)
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	h, lb := testHandler(logic.NewRegistrationStore(0), nil)
	lb.StateFunc = func() models.LeaderboardState { panic("boom") }
	router := NewRouter(h, RouterConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/leaderboard/retry", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", w.Code)
	}
}
