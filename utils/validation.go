package utils

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce   sync.Once
	sharedValidator *validator.Validate
)

// RegisterValidators adds the custom rules ("phone", "notblank") and json
// field naming to v. Used for gin's binding engine and for Validator().
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhoneNumber(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Validator returns a process wide validator reading `binding` tags, so
// models validate the same way inside services as they do in gin handlers.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.SetTagName("binding")
		if err := RegisterValidators(v); err != nil {
			panic(err)
		}
		sharedValidator = v
	})
	return sharedValidator
}

// InvalidFields lists the json names of the fields that failed validation.
func InvalidFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
