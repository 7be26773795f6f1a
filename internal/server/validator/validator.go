package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// trans is a private global translator
	trans ut.Translator
	once  sync.Once
)

// InitValidator configures gin's validator engine to report json field names
// with English messages. Safe to call more than once.
func InitValidator() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		locale := en.New()
		uni := ut.New(locale, locale)
		trans, _ = uni.GetTranslator("en")

		_ = en_translations.RegisterDefaultTranslations(v, trans)
	})
}

// IsValidationError reports whether err came from struct validation rather
// than from decoding the body.
func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}

// ParseValidationError maps each failing field, by its path such as
// "messages[1].role", to a readable message.
func ParseValidationError(err error) map[string]string {
	errMap := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errMap["body"] = "Invalid request body format. Please fix your payload."
		return errMap
	}

	for _, e := range validationErrors {
		ns := e.Namespace()
		if i := strings.Index(ns, "."); i != -1 {
			ns = ns[i+1:]
		}

		var msg string
		switch e.Tag() {
		case "oneof":
			msg = fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(e.Param(), " ", ", "))
		case "required":
			msg = "is required"
		case "notblank":
			msg = "must not be blank"
		case "min":
			msg = fmt.Sprintf("must contain at least %s item(s)", e.Param())
		default:
			if trans != nil {
				msg = e.Translate(trans)
			} else {
				msg = e.Error()
			}
		}

		errMap[ns] = msg
	}
	return errMap
}

// IsTypeError reports whether the body was valid JSON holding a value of the
// wrong type, such as a string where the messages array belongs.
func IsTypeError(err error) bool {
	var te *json.UnmarshalTypeError
	return errors.As(err, &te)
}

// ParseTypeError maps a decode type mismatch to its dotted field path, for
// example "messages.content" -> "must be a string".
func ParseTypeError(err error) map[string]string {
	var te *json.UnmarshalTypeError
	if !errors.As(err, &te) {
		return map[string]string{"body": "Invalid request body format. Please fix your payload."}
	}

	field := te.Field
	if field == "" {
		field = "body"
	}
	return map[string]string{field: "must be " + kindName(te.Type)}
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "a different type"
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Ptr:
		return kindName(t.Elem())
	default:
		return "a " + t.Kind().String()
	}
}

// Summarize renders the field map as one sentence, in stable order.
func Summarize(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+fields[k])
	}
	return "Invalid request: " + strings.Join(parts, "; ")
}
