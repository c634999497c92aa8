package patients

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Rule reports whether a single field value is acceptable.
type Rule func(value string) bool

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func fieldValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// NonEmpty accepts any value with at least one non-space character.
func NonEmpty(value string) bool {
	return strings.TrimSpace(value) != ""
}

// StrictEmail accepts well-formed addresses only.
func StrictEmail(value string) bool {
	return fieldValidator().Var(strings.TrimSpace(value), "required,email") == nil
}

// NonEmptyEmail accepts any non-blank email text and leaves format checks to the store.
func NonEmptyEmail(value string) bool {
	return NonEmpty(value)
}

// EmailRuleByName maps the form.email_rule config value to a Rule.
func EmailRuleByName(name string) (Rule, bool) {
	switch name {
	case "", "strict":
		return StrictEmail, true
	case "non_empty":
		return NonEmptyEmail, true
	default:
		return nil, false
	}
}
