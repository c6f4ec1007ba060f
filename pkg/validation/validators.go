package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// local@domain.tld with no whitespace and a single @ per side
	EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// SupportedLangs lists the content languages of the site.
var SupportedLangs = map[string]bool{
	"en": true,
	"es": true,
}

// New returns a validator that reports field names using their yaml or json
// tag and has the custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(tagName)
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("trimmed_required", TrimmedRequired)
	_ = v.RegisterValidation("basic_email", BasicEmail)
	_ = v.RegisterValidation("content_lang", ContentLang)
}

// TrimmedRequired rejects strings that are empty once whitespace is removed.
func TrimmedRequired(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// BasicEmail validates the local@domain.tld shape after trimming.
// Empty values pass so the rule can be combined with trimmed_required.
func BasicEmail(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true
	}
	return IsBasicEmail(val)
}

// ContentLang validates a content language code.
func ContentLang(fl validator.FieldLevel) bool {
	return SupportedLangs[fl.Field().String()]
}

// IsBasicEmail reports whether s matches EmailPattern.
func IsBasicEmail(s string) bool {
	return EmailPattern.MatchString(s)
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"yaml", "json"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
