// Package contact implements the contact form submission flow: eager field
// validation, the Idle/Submitting/Submitted/Failed lifecycle and the mood
// signal consumed by the avatar.
package contact

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"obsidiana-backend/pkg/web3forms"
)

// State is the submission lifecycle state of a form.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSubmitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = StateIdle
	case "submitting":
		*s = StateSubmitting
	case "submitted":
		*s = StateSubmitted
	case "failed":
		*s = StateFailed
	default:
		return fmt.Errorf("unknown form state %q", b)
	}
	return nil
}

// Relay delivers a payload to the form-relay service.
type Relay interface {
	Send(ctx context.Context, p web3forms.Payload) (*web3forms.Response, error)
}

// Config configures a Form.
type Config struct {
	ID            string
	Relay         Relay
	SiteName      string // used in the composite subject line
	FallbackError string // shown when the relay gives no message
}

const (
	defaultSiteName      = "Código Obsidiana"
	defaultFallbackError = "Error al enviar el formulario. Por favor, intenta de nuevo."
)

// Form is one contact form instance. It is safe for concurrent use; at most
// one submission is in flight at a time.
type Form struct {
	id       string
	relay    Relay
	siteName string
	fallback string

	mu      sync.Mutex
	values  Input
	touched map[Field]bool
	state   State
	errMsg  string
	mood    Mood

	listeners    map[uint64]MoodListener
	nextListener uint64
	moodSeq      uint64

	// notifyMu orders mood delivery; delivered is the seq of the last
	// notification that reached the listeners.
	notifyMu  sync.Mutex
	delivered uint64
}

// NewForm returns an idle form with empty fields and a neutral mood.
func NewForm(cfg Config) *Form {
	f := &Form{
		id:        cfg.ID,
		relay:     cfg.Relay,
		siteName:  cfg.SiteName,
		fallback:  cfg.FallbackError,
		touched:   make(map[Field]bool),
		state:     StateIdle,
		mood:      MoodNeutral,
		listeners: make(map[uint64]MoodListener),
	}
	if f.siteName == "" {
		f.siteName = defaultSiteName
	}
	if f.fallback == "" {
		f.fallback = defaultFallbackError
	}
	return f
}

// ID returns the identifier given in Config.
func (f *Form) ID() string {
	return f.id
}

// State returns the current lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Mood returns the last emitted mood.
func (f *Form) Mood() Mood {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mood
}

// OnFieldChange signals that the user edited a field. It only affects the
// mood: Attentive is emitted unless the form is already attentive.
func (f *Form) OnFieldChange(Field) {
	f.mu.Lock()
	if f.mood == MoodAttentive {
		f.mu.Unlock()
		return
	}
	notify := f.setMoodLocked(MoodAttentive)
	f.mu.Unlock()
	notify()
}

// SetField stores the raw value of field, signals the change and returns the
// eager validation result. Edits are rejected while a submission is in
// flight.
func (f *Form) SetField(field Field, value string) (*ValidationError, error) {
	if _, ok := rules[field]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	f.values.set(field, value)
	f.touched[field] = true
	f.mu.Unlock()

	f.OnFieldChange(field)
	return Validate(field, value), nil
}

// Submit validates every field and, when they all pass, sends the trimmed
// values to the relay. It blocks until the relay answers.
//
// It returns ValidationErrors or ErrSubmissionInFlight without side effects
// when the submission is rejected, *SubmissionError when the relay reports
// or causes a failure, and nil once the form reaches StateSubmitted.
func (f *Form) Submit(ctx context.Context) error {
	_, err := f.SubmitValues(ctx)
	return err
}

// SubmitValues is Submit, also returning the trimmed values handed to the
// relay. sent is empty when the submission was rejected before sending.
func (f *Form) SubmitValues(ctx context.Context) (sent Input, err error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return Input{}, ErrSubmissionInFlight
	}
	if errs := ValidateInput(f.values); len(errs) > 0 {
		for _, fld := range Fields {
			f.touched[fld] = true
		}
		f.mu.Unlock()
		return Input{}, errs
	}
	if f.relay == nil {
		f.mu.Unlock()
		return Input{}, ErrRelayNotConfigured
	}
	f.state = StateSubmitting
	f.errMsg = ""
	sent = f.values.Trimmed()
	payload := f.payload(sent)
	f.mu.Unlock()

	resp, err := f.relay.Send(ctx, payload)

	if subErr := f.interpret(resp, err); subErr != nil {
		f.mu.Lock()
		notify := f.setMoodLocked(MoodNegative)
		f.state = StateFailed
		f.errMsg = subErr.Message
		f.mu.Unlock()
		notify()
		return sent, subErr
	}

	f.mu.Lock()
	f.state = StateSubmitted
	f.clearLocked()
	notify := f.setMoodLocked(MoodPositive)
	f.mu.Unlock()
	notify()
	return sent, nil
}

// Reset returns a submitted or failed form to Idle with empty fields.
func (f *Form) Reset() error {
	f.mu.Lock()
	if f.state != StateSubmitted && f.state != StateFailed {
		st := f.state
		f.mu.Unlock()
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, st)
	}
	f.state = StateIdle
	f.errMsg = ""
	f.clearLocked()
	notify := f.setMoodLocked(MoodNeutral)
	f.mu.Unlock()
	notify()
	return nil
}

// Snapshot is the view of a form handed to the rendering layer.
type Snapshot struct {
	ID             string                     `json:"id"`
	State          State                      `json:"state"`
	Fields         Input                      `json:"fields"`
	Errors         map[Field]*ValidationError `json:"errors,omitempty"`
	ErrorMessage   string                     `json:"error_message,omitempty"`
	Mood           Mood                       `json:"mood"`
	SubmitDisabled bool                       `json:"submit_disabled"`
}

// Snapshot returns the current view. Errors only cover fields the user has
// touched, or every field after a rejected submit.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		ID:             f.id,
		State:          f.state,
		Fields:         f.values,
		ErrorMessage:   f.errMsg,
		Mood:           f.mood,
		SubmitDisabled: f.state == StateSubmitting,
	}
	for _, fld := range Fields {
		if !f.touched[fld] {
			continue
		}
		if e := Validate(fld, f.values.Get(fld)); e != nil {
			if s.Errors == nil {
				s.Errors = make(map[Field]*ValidationError)
			}
			s.Errors[fld] = e
		}
	}
	return s
}

// CompositeSubject builds the inbox subject line for a sender name.
func CompositeSubject(name, siteName string) string {
	return fmt.Sprintf("%s - Contacto desde %s", strings.TrimSpace(name), siteName)
}

func (f *Form) payload(in Input) web3forms.Payload {
	return web3forms.Payload{
		Name:         in.Name,
		Email:        in.Email,
		EmailSubject: in.Subject,
		Subject:      CompositeSubject(in.Name, f.siteName),
		Message:      in.Message,
	}
}

func (f *Form) interpret(resp *web3forms.Response, err error) *SubmissionError {
	switch {
	case err != nil:
		return &SubmissionError{Message: f.fallback, Cause: err}
	case resp == nil:
		return &SubmissionError{Message: f.fallback}
	case resp.Success:
		return nil
	case strings.TrimSpace(resp.Message) != "":
		return &SubmissionError{Message: resp.Message}
	default:
		return &SubmissionError{Message: f.fallback}
	}
}

// clearLocked empties the fields. Caller holds f.mu.
func (f *Form) clearLocked() {
	f.values = Input{}
	f.touched = make(map[Field]bool)
}
