package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Custom tags. Messages receive the field name as {0} and the value as {1}.
var customTags = map[string]struct {
	fn      validator.Func
	message string
}{
	"template_name": {isTemplateName, "{0} must be a single directory name, not starting with '.': {1}"},
	"category_key":  {isCategoryKey, "{0} must be a short key of letters, numbers, '_' or '-': {1}"},
	"repo_path":     {isRepoPath, "{0} must look like owner/repo[/sub/dir][#ref]: {1}"},
	"relative_dir":  {isRelativeDir, "{0} must be a directory inside the project, without '..': {1}"},
}

// ValidationError is one translated failure, keyed by the struct namespace
// (e.g. "CategoryConfig.Key").
type ValidationError struct {
	Field  string
	Detail string
}

type ValidationErrors []ValidationError

func NewValidationError(key, detail string) error {
	return &ValidationError{Field: key, Detail: detail}
}

func (e *ValidationError) Error() string {
	return e.Detail
}

func (ve ValidationErrors) Error() string {
	details := make([]string, len(ve))
	for i, e := range ve {
		details[i] = e.Detail
	}
	return "validation failed: " + strings.Join(details, "; ")
}

// Validator pairs a validator instance with its English translator.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator creates a Validator with the yz tags and English messages.
// Field names in messages come from the `cli` struct tag when present.
func NewValidator() (*Validator, error) {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("cli"); name != "" {
			return name
		}
		return fld.Name
	})

	enLocale := en.New()
	trans, found := ut.New(enLocale, enLocale).GetTranslator("en")
	if !found {
		return nil, errors.New("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	v := &Validator{validate: validate, trans: trans}
	for tag, custom := range customTags {
		if err := validate.RegisterValidation(tag, custom.fn); err != nil {
			return nil, err
		}
		if err := v.RegisterCustomTranslation(tag, custom.message); err != nil {
			return nil, fmt.Errorf("failed to register custom translation for %s: %w", tag, err)
		}
	}
	return v, nil
}

// RegisterCustomTranslation replaces the message of tag.
func (v *Validator) RegisterCustomTranslation(tag, msg string) error {
	return v.validate.RegisterTranslation(tag, v.trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field(), fmt.Sprintf("%v", fe.Value()))
			return t
		},
	)
}

// Struct validates s. The returned error reads as the translated messages and
// still unwraps to validator.ValidationErrors.
func (v *Validator) Struct(s any) error {
	return v.translate(v.validate.Struct(s))
}

// Var validates a single value against tag, e.g. v.Var(name, "template_name").
func (v *Validator) Var(field any, tag string) error {
	return v.translate(v.validate.Var(field, tag))
}

func (v *Validator) translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, e := range verrs {
		msgs[i] = e.Translate(v.trans)
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), verrs)
}

// ParseValidationErrors flattens err into translated per-field entries.
func (v *Validator) ParseValidationErrors(err error) ValidationErrors {
	ves := ValidationErrors{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			ves = append(ves, ValidationError{
				Field:  verr.StructNamespace(),
				Detail: verr.Translate(v.trans),
			})
		}
	}
	return ves
}
