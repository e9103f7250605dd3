package apperr

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "{0} must not be blank"

	studentCodeTag   = "studentcode"
	studentCodeText  = "{0} must be at least 4 letters or digits"
	studentCodeRegex = regexp.MustCompile(`^[A-Za-z0-9]{4,}$`)
)

func init() {
	Validator = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validator, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validator.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = Validator.RegisterValidation(studentCodeTag, func(fl validator.FieldLevel) bool {
		return studentCodeRegex.MatchString(fl.Field().String())
	})
	registerTranslation(notBlankTag, notBlankText)
	registerTranslation(studentCodeTag, studentCodeText)
}

func registerTranslation(tag, text string) {
	_ = Validator.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// ValidStudentCode reports whether code matches the rewards platform's format.
func ValidStudentCode(code string) bool {
	return studentCodeRegex.MatchString(code)
}

// Validate runs struct tags on v and converts failures into *ValidationError.
func Validate(v interface{}) error {
	err := Validator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	flds := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		flds = append(flds, FieldError{Field: fe.Field(), Error: fe.Translate(Translator)})
	}
	return NewValidationError(errors.New("validation failed"), flds...)
}
