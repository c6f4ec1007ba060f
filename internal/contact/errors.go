package contact

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSubmissionInFlight = errors.New("contact: a submission is already in flight")
	ErrInvalidTransition  = errors.New("contact: operation not allowed in current state")
	ErrUnknownField       = errors.New("contact: unknown field")
	ErrRelayNotConfigured = errors.New("contact: relay not configured")
)

// Reason classifies a validation failure.
type Reason string

const (
	ReasonRequired      Reason = "required"
	ReasonTooShort      Reason = "too_short"
	ReasonInvalidFormat Reason = "invalid_format"
)

// messages holds the user-facing text per field and reason.
var messages = map[Field]map[Reason]string{
	FieldName: {
		ReasonRequired: "El nombre es requerido",
		ReasonTooShort: "El nombre debe tener al menos 2 caracteres",
	},
	FieldEmail: {
		ReasonRequired:      "El email es requerido",
		ReasonInvalidFormat: "Por favor ingresa un email válido",
	},
	FieldSubject: {
		ReasonRequired: "El asunto es requerido",
		ReasonTooShort: "El asunto debe tener al menos 3 caracteres",
	},
	FieldMessage: {
		ReasonRequired: "El mensaje es requerido",
		ReasonTooShort: "El mensaje debe tener al menos 10 caracteres",
	},
}

// ValidationError reports one field that failed its rule.
type ValidationError struct {
	Field   Field  `json:"field"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func newValidationError(f Field, r Reason) *ValidationError {
	return &ValidationError{Field: f, Reason: r, Message: messages[f][r]}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationErrors aggregates the failures of a whole form.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return "contact: invalid input: " + strings.Join(parts, ", ")
}

// ByField indexes the errors by field.
func (es ValidationErrors) ByField() map[Field]*ValidationError {
	out := make(map[Field]*ValidationError, len(es))
	for _, e := range es {
		out[e.Field] = e
	}
	return out
}

// SubmissionError is the failure of a submission that reached the relay
// stage. Message is safe to show to the sender.
type SubmissionError struct {
	Message string
	Cause   error
}

func (e *SubmissionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("contact: submission failed: %s: %v", e.Message, e.Cause)
	}
	return "contact: submission failed: " + e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}
