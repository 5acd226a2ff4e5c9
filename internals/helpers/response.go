package helper

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ValidationErrors flattens validator.v10 errors into field -> tags, keyed by json name.
func ValidationErrors(err error) map[string][]string {
	out := map[string][]string{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = []string{err.Error()}
		return out
	}
	for _, fe := range ve {
		field := fe.Field()
		tag := fe.Tag()
		if p := fe.Param(); p != "" {
			tag += "=" + p
		}
		out[field] = append(out[field], tag)
	}
	return out
}

// ValidationError writes validator.v10 errors as a 422.
func ValidationError(c *fiber.Ctx, err error) error {
	return JsonValidationError(c, ValidationErrors(err))
}

// NewValidator reports json tag names instead of Go field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}
