package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eventloka/server/internal/api/problem"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any, env string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent; nothing left to do but log.
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError,
			"Failed to encode response", err, env)
	}
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation. A problem response has already been written when it
// returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, env string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError,
			"Invalid request body", err, env)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError,
				"Invalid request", nil, env,
				problem.WithErrors(fieldErrorMap(fieldErrs)))
			return false
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError,
			"Invalid request", err, env)
		return false
	}
	return true
}

func fieldErrorMap(fieldErrs validator.ValidationErrors) map[string]interface{} {
	out := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[strings.ToLower(fe.Field())] = fieldErrorMessage(fe)
	}
	return out
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
