// Package client is a small HTTP client for the registration API, used by
// the seeder command.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mettlestate/tournament-site/internal/logic"
	"github.com/mettlestate/tournament-site/internal/models"
)

// ErrUnavailable is returned when the API sheds the submission (503).
var ErrUnavailable = errors.New("registration service unavailable")

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL
// (e.g. "http://localhost:8080").
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Submit posts a registration. A 422 comes back as *logic.ValidationError
// so a logic.Form can drive the API the same way it drives the service.
func (c *Client) Submit(ctx context.Context, form models.RegistrationForm) (*models.RegistrationReceipt, error) {
	payload, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("marshal form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/registrations", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		var receipt models.RegistrationReceipt
		if err := json.Unmarshal(body, &receipt); err != nil {
			return nil, fmt.Errorf("decode receipt: %w", err)
		}
		return &receipt, nil
	case http.StatusUnprocessableEntity:
		var verr models.ValidationErrorResponse
		if err := json.Unmarshal(body, &verr); err != nil {
			return nil, fmt.Errorf("decode validation errors: %w", err)
		}
		return nil, &logic.ValidationError{Fields: verr.Errors}
	case http.StatusServiceUnavailable:
		return nil, ErrUnavailable
	default:
		return nil, fmt.Errorf("%w: unexpected status %s: %s", logic.ErrSubmissionFailed, resp.Status, apiError(body))
	}
}

// Stats fetches the registration counter.
func (c *Client) Stats(ctx context.Context) (*models.RegistrationStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/registrations/count", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, apiError(body))
	}

	var stats models.RegistrationStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &stats, nil
}

func apiError(body []byte) string {
	var e models.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
