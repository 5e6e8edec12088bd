package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	once       sync.Once
	v          *validator.Validate
	translator ut.Translator
)

func lazyinit() {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// report fields by their form name
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})

		en := en.New()
		uni := ut.New(en, en)
		translator, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, translator)

		register("required", "{0} is required")
		register("gt", "{0} must be greater than {1}")
		register("gte", "{0} must be at least {1}")
		register("max", "{0} must be at most {1} characters")
		register("oneof", "{0} must be one of [{1}]")
		register("email", "{0} must be a valid email address")
	})
}

func register(tag, text string) {
	_ = v.RegisterTranslation(tag, translator, func(ut ut.Translator) error {
		return ut.Add(tag, text, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(tag, fe.Field(), fe.Param())
		return t
	})
}

// Struct checks obj against its `validate` tags and returns one message per
// failing field, keyed by the field's form name. It returns nil when obj is valid.
func Struct(obj any) map[string]string {
	lazyinit()
	err := v.Struct(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fe.Translate(translator)
		}
	}
	return out
}
