package contact

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"obsidiana-backend/pkg/validation"
)

// Field names one of the four contact form inputs.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
)

// Fields lists the form inputs in display order.
var Fields = []Field{FieldName, FieldEmail, FieldSubject, FieldMessage}

// ParseField maps a wire name to a Field.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rules[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return f, nil
}

// Rule is the validation contract of a single field.
type Rule struct {
	Required  bool
	MinLength int
	Email     bool
}

var rules = map[Field]Rule{
	FieldName:    {Required: true, MinLength: 2},
	FieldEmail:   {Required: true, Email: true},
	FieldSubject: {Required: true, MinLength: 3},
	FieldMessage: {Required: true, MinLength: 10},
}

// RuleFor returns the rule of f.
func RuleFor(f Field) (Rule, bool) {
	r, ok := rules[f]
	return r, ok
}

// Validate checks a single value against its field rule. The value is
// trimmed first and lengths count code points. It returns nil when the value
// passes.
func Validate(field Field, value string) *ValidationError {
	rule, ok := rules[field]
	if !ok {
		return nil
	}
	v := strings.TrimSpace(value)
	switch {
	case rule.Required && v == "":
		return newValidationError(field, ReasonRequired)
	case rule.MinLength > 0 && utf8.RuneCountInString(v) < rule.MinLength:
		return newValidationError(field, ReasonTooShort)
	case rule.Email && !validation.IsBasicEmail(v):
		return newValidationError(field, ReasonInvalidFormat)
	}
	return nil
}

// Input is the set of raw field values of one submission attempt.
type Input struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Get returns the value of f.
func (in Input) Get(f Field) string {
	switch f {
	case FieldName:
		return in.Name
	case FieldEmail:
		return in.Email
	case FieldSubject:
		return in.Subject
	case FieldMessage:
		return in.Message
	}
	return ""
}

func (in *Input) set(f Field, v string) {
	switch f {
	case FieldName:
		in.Name = v
	case FieldEmail:
		in.Email = v
	case FieldSubject:
		in.Subject = v
	case FieldMessage:
		in.Message = v
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (in Input) Trimmed() Input {
	return Input{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
}

// ValidateInput runs Validate on every field and collects the failures.
func ValidateInput(in Input) ValidationErrors {
	var errs ValidationErrors
	for _, f := range Fields {
		if e := Validate(f, in.Get(f)); e != nil {
			errs = append(errs, e)
		}
	}
	return errs
}
