package validation

import (
	"github.com/go-playground/validator/v10"
)

// New returns a validator with the account rules registered. roles is the
// deployment's set of accepted account roles.
func New(roles []string) *validator.Validate {
	v := validator.New()
	RegisterValidators(v, roles)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate, roles []string) {
	_ = v.RegisterValidation("account_role", AccountRole(roles))
}

// AccountRole accepts exactly the configured labels. Comparison is case sensitive.
func AccountRole(roles []string) validator.Func {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(fl validator.FieldLevel) bool {
		return allowed[fl.Field().String()]
	}
}
