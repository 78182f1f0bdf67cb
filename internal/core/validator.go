package core

import (
	"github.com/go-playground/validator/v10"

	"nimbus/internal/types"
)

// errCodeValidationFailed covers struct-tag validation failures on request
// parameters.
const errCodeValidationFailed types.ErrorCode = "validation_failed"

// Validator wraps go-playground/validator for request parameter structs.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with required-struct semantics enabled.
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateStruct checks v against its validate tags. Violations map to a
// 400 AppError with a per-field details map; other failures surface as the
// wrapped error.
func (v *Validator) ValidateStruct(val any) error {
	err := v.validate.Struct(val)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to validate request parameters", err)
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return types.NewAppErrorWithDetails(errCodeValidationFailed,
		"request parameters failed validation", err, details)
}
