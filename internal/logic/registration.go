package logic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mettlestate/tournament-site/internal/models"
)

var (
	// ErrSubmissionFailed wraps any failure of the (simulated) remote call.
	ErrSubmissionFailed = errors.New("registration submission failed")
	// ErrSubmitInProgress is returned when a form is submitted twice at once.
	ErrSubmitInProgress = errors.New("registration already being submitted")
)

// Remote is the registration backend call. There is no real backend; the
// default only waits.
type Remote func(ctx context.Context, reg models.Registration) error

// SimulatedRemote waits for latency, or until ctx is done.
func SimulatedRemote(latency time.Duration) Remote {
	return func(ctx context.Context, _ models.Registration) error {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type RegistrationServiceConfig struct {
	Counter   Counter
	Validator *FormValidator
	Remote    Remote
	// SuccessDisplay is how long the page shows the success view before
	// the form closes. Reported to callers as closeAfterMs.
	SuccessDisplay time.Duration
	Logger         *zap.Logger
}

type registrationService struct {
	counter        Counter
	validator      *FormValidator
	remote         Remote
	successDisplay time.Duration
	logger         *zap.SugaredLogger
	now            func() time.Time
}

func NewRegistrationService(cfg RegistrationServiceConfig) RegistrationService {
	if cfg.Validator == nil {
		cfg.Validator = NewFormValidator()
	}
	if cfg.Remote == nil {
		cfg.Remote = SimulatedRemote(time.Second)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &registrationService{
		counter:        cfg.Counter,
		validator:      cfg.Validator,
		remote:         cfg.Remote,
		successDisplay: cfg.SuccessDisplay,
		logger:         cfg.Logger.Sugar(),
		now:            time.Now,
	}
}

func (s *registrationService) Validate(form models.RegistrationForm) (*models.Registration, models.FieldErrors) {
	return s.validator.Validate(form)
}

// Submit validates the form, runs the remote call and counts the
// registration exactly once on success. Nothing is counted on any error.
func (s *registrationService) Submit(ctx context.Context, form models.RegistrationForm) (*models.RegistrationReceipt, error) {
	reg, fieldErrs := s.validator.Validate(form)
	if fieldErrs != nil {
		s.logger.Infow("Registration rejected by validation", "fields", fieldNames(fieldErrs), "gamerTagLen", len(form.GamerTag))
		return nil, &ValidationError{Fields: fieldErrs}
	}

	start := s.now()
	if err := s.remote(ctx, *reg); err != nil {
		s.logger.Errorw("Registration submission failed",
			"operation", "submit",
			"gamerTag", reg.GamerTag,
			"elapsed", s.now().Sub(start),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	count := s.counter.Increment()
	s.logger.Infow("Registration confirmed", "gamerTag", reg.GamerTag, "count", count)

	return &models.RegistrationReceipt{
		ID:           uuid.NewString(),
		GamerTag:     reg.GamerTag,
		Count:        count,
		SubmittedAt:  s.now().UTC(),
		CloseAfterMs: s.successDisplay.Milliseconds(),
	}, nil
}

func fieldNames(fe models.FieldErrors) []string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormStatus is the state of a registration form session.
type FormStatus string

const (
	FormIdle       FormStatus = "idle"
	FormSubmitting FormStatus = "submitting"
	FormSuccess    FormStatus = "success"
	FormFailed     FormStatus = "failed"
)

// FormSnapshot is a copy of a form session's visible state.
type FormSnapshot struct {
	Values models.RegistrationForm
	Errors models.FieldErrors
	Status FormStatus
	Error  string
}

// Form is one registration modal session: the values being edited, the
// field errors of the last attempt, and the submit lifecycle. After a
// successful submit the success view stays for the display delay, then the
// form clears itself and the completion callback fires once.
type Form struct {
	submitter  Submitter
	display    time.Duration
	onComplete func(models.RegistrationReceipt)

	mu     sync.Mutex
	values models.RegistrationForm
	errors models.FieldErrors
	status FormStatus
	errMsg string
	timer  *time.Timer
}

func NewForm(submitter Submitter, display time.Duration, onComplete func(models.RegistrationReceipt)) *Form {
	if onComplete == nil {
		onComplete = func(models.RegistrationReceipt) {}
	}
	return &Form{
		submitter:  submitter,
		display:    display,
		onComplete: onComplete,
		status:     FormIdle,
	}
}

// Set replaces the values being edited.
func (f *Form) Set(values models.RegistrationForm) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = values
}

// Submit sends the current values. Validation errors are kept per field;
// any other failure is kept as a message until DismissError, and the values
// stay for correction.
func (f *Form) Submit(ctx context.Context) (*models.RegistrationReceipt, error) {
	f.mu.Lock()
	if f.status == FormSubmitting || f.status == FormSuccess {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	f.status = FormSubmitting
	values := f.values
	f.mu.Unlock()

	receipt, err := f.submitter.Submit(ctx, values)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.status = FormIdle
			f.errors = verr.Fields
			return nil, err
		}
		f.status = FormFailed
		f.errors = nil
		f.errMsg = "Registration failed. Please try again."
		return nil, err
	}

	f.status = FormSuccess
	f.errors = nil
	f.errMsg = ""
	done := *receipt
	f.timer = time.AfterFunc(f.display, func() { f.complete(done) })
	return receipt, nil
}

func (f *Form) complete(receipt models.RegistrationReceipt) {
	f.mu.Lock()
	if f.status != FormSuccess {
		f.mu.Unlock()
		return
	}
	f.values = models.RegistrationForm{}
	f.status = FormIdle
	f.timer = nil
	f.mu.Unlock()

	f.onComplete(receipt)
}

// DismissError clears a retained submission error.
func (f *Form) DismissError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errMsg = ""
	if f.status == FormFailed {
		f.status = FormIdle
	}
}

// Snapshot returns a copy of the visible state.
func (f *Form) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs models.FieldErrors
	if f.errors != nil {
		errs = make(models.FieldErrors, len(f.errors))
		for k, v := range f.errors {
			errs[k] = v
		}
	}
	return FormSnapshot{
		Values: f.values,
		Errors: errs,
		Status: f.status,
		Error:  f.errMsg,
	}
}

// Close stops a pending completion without firing it.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	if f.status == FormSuccess {
		f.status = FormIdle
	}
}
