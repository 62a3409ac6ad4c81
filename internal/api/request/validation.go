package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// keyRegex requires at least one character that survives key normalization.
var keyRegex = regexp.MustCompile(`[A-Za-z0-9]`)

func init() {
	validate.RegisterValidation("reckey", func(fl validator.FieldLevel) bool {
		return keyRegex.MatchString(fl.Field().String())
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// DecodeOptional is Decode for endpoints whose body may be omitted entirely.
func DecodeOptional(r *http.Request, v any) error {
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid JSON: %w", err)
		}
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireRef(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required reference")
	}
	return s, nil
}
