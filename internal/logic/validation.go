package logic

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mettlestate/tournament-site/internal/models"
)

var (
	fullNamePattern = regexp.MustCompile(`^[\p{L} '’-]+$`)
	gamerTagPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// fieldMessages holds the user-facing message per field and failed tag.
var fieldMessages = map[string]map[string]string{
	"fullName": {
		"required": "Full name is required",
		"min":      "Full name must be at least 2 characters",
		"max":      "Full name must be at most 100 characters",
		"fullname": "Full name may only contain letters, spaces, hyphens and apostrophes",
	},
	"gamerTag": {
		"required": "Gamer tag is required",
		"min":      "Gamer tag must be at least 3 characters",
		"max":      "Gamer tag must be at most 20 characters",
		"gamertag": "Gamer tag may only contain letters, numbers, underscores and hyphens",
	},
	"email": {
		"required": "Email is required",
		"email":    "Please enter a valid email address",
	},
	"favoriteGame": {
		"required": "Please enter your favorite game",
		"min":      "Please enter your favorite game",
		"max":      "Favorite game must be at most 100 characters",
	},
}

// ValidationError rejects a whole submission. Fields holds one message per
// offending field.
type ValidationError struct {
	Fields models.FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid registration: %s", strings.Join(names, ", "))
}

// FormValidator checks registration forms against the field constraints.
type FormValidator struct {
	validate *validator.Validate
}

func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so errors line up with the form inputs
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Patterns are compile-time constants; registration cannot fail.
	_ = v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return fullNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("gamertag", func(fl validator.FieldLevel) bool {
		return gamerTagPattern.MatchString(fl.Field().String())
	})

	return &FormValidator{validate: v}
}

// Validate returns the trimmed record, or the per-field errors. It never
// accepts part of a form.
func (fv *FormValidator) Validate(form models.RegistrationForm) (*models.Registration, models.FieldErrors) {
	form = normalizeForm(form)

	err := fv.validate.Struct(form)
	if err == nil {
		return &models.Registration{
			FullName:     form.FullName,
			GamerTag:     form.GamerTag,
			Email:        form.Email,
			FavoriteGame: form.FavoriteGame,
		}, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, models.FieldErrors{"form": "Registration could not be validated"}
	}

	fieldErrs := make(models.FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fieldErrs[fe.Field()]; seen {
			continue
		}
		fieldErrs[fe.Field()] = messageFor(fe.Field(), fe.Tag())
	}
	return nil, fieldErrs
}

func messageFor(field, tag string) string {
	if msg, ok := fieldMessages[field][tag]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", field)
}

func normalizeForm(form models.RegistrationForm) models.RegistrationForm {
	return models.RegistrationForm{
		FullName:     strings.TrimSpace(form.FullName),
		GamerTag:     strings.TrimSpace(form.GamerTag),
		Email:        strings.TrimSpace(form.Email),
		FavoriteGame: strings.TrimSpace(form.FavoriteGame),
	}
}
