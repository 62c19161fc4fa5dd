// Package validation wraps go-playground/validator with wallet specific rules.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/vietddude/algowatch/internal/core/domain"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("algo_address", func(fl validator.FieldLevel) bool {
			return domain.ValidAddress(fl.Field().String())
		})
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "yaml"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		instance = v
	})
	return instance
}

// Struct validates s and converts the first failure into a *domain.ValidationError.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &domain.ValidationError{
		Field:  fieldPath(fe.Namespace()),
		Reason: reason(fe),
	}
}

// Address validates a single address value.
func Address(field, value string) error {
	if !domain.ValidAddress(value) {
		return &domain.ValidationError{Field: field, Reason: "not a valid Algorand address"}
	}
	return nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "algo_address":
		return "not a valid Algorand address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url":
		return "must be a valid URL"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
