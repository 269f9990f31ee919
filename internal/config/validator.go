package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/endpoint"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return common.NewValidationError("config", nil, "configuration is nil")
	}

	validate := validator.New()

	// Register custom validation for file existence
	_ = validate.RegisterValidation("fileexists", func(fl validator.FieldLevel) bool {
		filePath := fl.Field().String()
		if filePath == "" {
			return true
		}
		_, err := os.Stat(filePath)
		return !os.IsNotExist(err)
	})

	// Register custom validation for LogLevel
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	// Register custom validation for LogFormat
	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("endpoint", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if name == "" {
			return true
		}
		_, ok := endpoint.Parse(name)
		return ok
	})

	// Register custom validation for slices of endpoint names
	_ = validate.RegisterValidation("endpoints", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Slice {
			return false
		}
		names, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		for _, name := range names {
			if _, ok := endpoint.Parse(name); !ok {
				return false
			}
		}
		return true
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	fieldErrs := make([]error, 0, len(errs))
	for _, e := range errs {
		fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
		section, field, found := strings.Cut(fieldName, ".")
		if !found {
			section, field = "", fieldName
		}
		reason := fmt.Sprintf("rule '%s'", e.Tag())
		if e.Param() != "" {
			reason += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			reason += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		fieldErrs = append(fieldErrs, common.NewConfigurationError(section, field, reason))
	}
	return common.CombineErrors(fieldErrs)
}
