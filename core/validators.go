package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	orgStatusTag  = "orgstatus"
	orgStatusText = "must be one of 'Active', 'Suspended' or 'In Arrears'"

	dataURITag   = "imagedatauri"
	dataURIText  = "must be a base64 image data-URI"
	dataURIRegex = regexp.MustCompile(`^data:image/[\w.+-]+;base64,.+`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(orgStatusTag, orgStatusValidation)
	RegisterCustomTranslation(validate, translator, orgStatusTag, orgStatusText)

	_ = validate.RegisterValidation(dataURITag, dataURIValidation)
	RegisterCustomTranslation(validate, translator, dataURITag, dataURIText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// orgStatusValidation only allows known organization lifecycle statuses.
func orgStatusValidation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Active", "Suspended", "In Arrears":
		return true
	}
	return false
}

// dataURIValidation only allows base64-encoded image data-URIs.
func dataURIValidation(fl validator.FieldLevel) bool {
	return dataURIRegex.MatchString(fl.Field().String())
}
