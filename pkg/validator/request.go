package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *playground.Validate
)

func instance() *playground.Validate {
	once.Do(func() {
		validate = playground.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Struct validates v against its `validate` struct tags.
func Struct(v any) error {
	return instance().Struct(v)
}

// MissingFields returns the JSON names of fields that failed a "required"
// rule. Other validation failures are ignored.
func MissingFields(err error) []string {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	var fields []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			fields = append(fields, fe.Field())
		}
	}
	return fields
}
