package handlers

import (
	"errors"
	"net/http"

	"github.com/mettlestate/tournament-site/internal/logic"
	"github.com/mettlestate/tournament-site/internal/models"
	"github.com/mettlestate/tournament-site/internal/worker"
)

// GetRegistrationCount handles GET /api/v1/registrations/count
// @Summary Registration counter
// @Description Current registration count against the advertised maximum
// @Tags Registrations
// @Produce json
// @Success 200 {object} models.RegistrationStats
// @Router /registrations/count [get]
func (h *Handler) GetRegistrationCount(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, logic.ComputeStats(h.counter.Read(), h.maxRegistrations))
}

// ValidateRegistration handles POST /api/v1/registrations/validate
// @Summary Validate a registration form
// @Description Runs the form rules without submitting. Always 200 for a readable body.
// @Tags Registrations
// @Accept json
// @Produce json
// @Param body body models.RegistrationForm true "Form"
// @Success 200 {object} models.ValidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /registrations/validate [post]
func (h *Handler) ValidateRegistration(w http.ResponseWriter, r *http.Request) {
	var form models.RegistrationForm
	if err := h.decodeJSON(w, r, &form); err != nil {
		status, msg := decodeStatus(err)
		h.errorResponse(w, status, msg)
		return
	}

	reg, fieldErrs := h.registrations.Validate(form)
	h.jsonResponse(w, http.StatusOK, models.ValidateResponse{
		Valid:  fieldErrs == nil,
		Record: reg,
		Errors: fieldErrs,
	})
}

// SubmitRegistration handles POST /api/v1/registrations
// @Summary Register for the tournament
// @Description Validates and submits a registration. The count goes up by exactly one on success.
// @Tags Registrations
// @Accept json
// @Produce json
// @Param body body models.RegistrationForm true "Form"
// @Success 201 {object} models.RegistrationReceipt
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ValidationErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /registrations [post]
func (h *Handler) SubmitRegistration(w http.ResponseWriter, r *http.Request) {
	var form models.RegistrationForm
	if err := h.decodeJSON(w, r, &form); err != nil {
		status, msg := decodeStatus(err)
		h.errorResponse(w, status, msg)
		return
	}

	// Reject bad forms before they take a queue slot.
	if _, fieldErrs := h.registrations.Validate(form); fieldErrs != nil {
		h.validationResponse(w, &logic.ValidationError{Fields: fieldErrs})
		return
	}

	job := worker.NewJob(r.Context(), form)
	if !h.pool.Enqueue(job) {
		h.logger.Warnw("Registration shed, submission queue full", "queueDepth", h.pool.QueueDepth())
		h.errorResponse(w, http.StatusServiceUnavailable, "Registrations are busy right now. Please try again.")
		return
	}

	var res worker.Result
	select {
	case res = <-job.Result:
	case <-r.Context().Done():
		h.logger.Infow("Client went away before registration finished", "job", job.ID)
		return
	}

	var verr *logic.ValidationError
	switch {
	case res.Err == nil:
		h.jsonResponse(w, http.StatusCreated, res.Receipt)
	case errors.As(res.Err, &verr):
		h.validationResponse(w, verr)
	default:
		h.logger.Errorw("Registration failed", "job", job.ID, "error", res.Err)
		h.errorResponse(w, http.StatusInternalServerError, "Registration failed. Please try again.")
	}
}

func (h *Handler) validationResponse(w http.ResponseWriter, verr *logic.ValidationError) {
	h.jsonResponse(w, http.StatusUnprocessableEntity, models.ValidationErrorResponse{
		Error:  "Please correct the highlighted fields",
		Errors: verr.Fields,
	})
}
