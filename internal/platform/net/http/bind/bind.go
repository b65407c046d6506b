// Package bind provides JSON bind and validation helpers for handlers
package bind

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "tubewatch/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidatorSvc holds a singleton validator and translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// Init initializes the singleton validator with english translations and json tag names
func Init() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Get returns the validator singleton, initializing on first use
func Get() *ValidatorSvc {
	if vSvc == nil {
		return Init()
	}
	return vSvc
}

// Struct validates v and maps the first failure to a field-scoped validation error
func Struct(v any) error {
	svc := Get()
	err := svc.Validator.Struct(v)
	if err == nil {
		return nil
	}
	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		fe := ves[0]
		return perr.Validation(fe.Field(), fe.Translate(svc.Translator))
	}
	return perr.Wrap(err, perr.ErrorCodeValidation, "validation failed")
}

// ParseJSON decodes the request body into T (unknown fields rejected) then validates it
func ParseJSON[T any](r *http.Request) (T, error) {
	var in T
	if r.Body == nil {
		return in, perr.New(perr.ErrorCodeJSON, "empty body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		if err == io.EOF {
			return in, perr.New(perr.ErrorCodeJSON, "empty body")
		}
		return in, perr.Wrap(err, perr.ErrorCodeJSON, "invalid json")
	}
	if err := Struct(in); err != nil {
		return in, err
	}
	return in, nil
}
