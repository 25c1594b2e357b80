package feedback

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000
)

// Form is the editable state of the dialog.
type Form struct {
	Rating       int    `json:"rating" validate:"gte=1,lte=5"`
	CategorySlug string `json:"categorySlug" validate:"required"`
	Comment      string `json:"comment" validate:"max=2000"`
	IsAnonymous  bool   `json:"isAnonymous"`
}

// defaultForm is the form as it looks when the dialog opens or after a
// successful submit.
func defaultForm(categorySlug string) Form {
	return Form{
		Rating:       0,
		CategorySlug: categorySlug,
		IsAnonymous:  true,
	}
}

// ValidationResult maps a form field (by its JSON name) to the rule it
// failed. An empty result is valid.
type ValidationResult struct {
	Errors map[string]string `json:"errors,omitempty"`
}

func (v ValidationResult) Valid() bool { return len(v.Errors) == 0 }

func (v ValidationResult) Has(field string) bool {
	_, ok := v.Errors[field]
	return ok
}

var fieldMessages = map[string]string{
	"rating":       "Please choose a rating from 1 to 5.",
	"categorySlug": "Please choose a category.",
	"comment":      "Comments are limited to 2000 characters.",
}

// Message is the inline hint for a failed field, empty when it passed.
func (v ValidationResult) Message(field string) string {
	if !v.Has(field) {
		return ""
	}
	return fieldMessages[field]
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func validateForm(v *validator.Validate, form Form) ValidationResult {
	err := v.Struct(form)
	if err == nil {
		return ValidationResult{}
	}

	result := ValidationResult{Errors: map[string]string{}}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		result.Errors["form"] = err.Error()
		return result
	}
	for _, fe := range verrs {
		result.Errors[fe.Field()] = fe.Tag()
	}
	return result
}
