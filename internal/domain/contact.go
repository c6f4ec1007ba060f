package domain

import (
	"context"
	"time"

	"obsidiana-backend/internal/contact"
)

// ContactRequest represents a one-shot contact form submission.
// Field rules are enforced by the contact package; binding only caps sizes.
type ContactRequest struct {
	Name    string `json:"name" binding:"max=200"`
	Email   string `json:"email" binding:"max=320"`
	Subject string `json:"subject" binding:"max=300"`
	Message string `json:"message" binding:"max=5000"`
}

// Input converts the request to form input.
func (r *ContactRequest) Input() contact.Input {
	return contact.Input{Name: r.Name, Email: r.Email, Subject: r.Subject, Message: r.Message}
}

// FieldUpdateRequest carries the raw value of a single field.
type FieldUpdateRequest struct {
	Value string `json:"value" binding:"max=5000"`
}

// FieldUpdateResult is returned after an eager field validation.
type FieldUpdateResult struct {
	Field contact.Field            `json:"field"`
	Error *contact.ValidationError `json:"error,omitempty"`
	Form  contact.Snapshot         `json:"form"`
}

// RequestMeta describes the HTTP caller for audit purposes.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	RequestID string
}

// SubmissionRecord is the audit row of a finished submission. The message
// body is never stored.
type SubmissionRecord struct {
	ID           string    `json:"id"`
	FormID       string    `json:"form_id"`
	State        string    `json:"state"`
	ErrorMessage string    `json:"error_message,omitempty"`
	SenderEmail  string    `json:"sender_email"` // masked
	Subject      string    `json:"subject"`
	ClientIP     string    `json:"client_ip,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmissionPage is a page of audit rows.
type SubmissionPage struct {
	Items  []SubmissionRecord `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// SubmissionRepository persists submission outcomes.
type SubmissionRepository interface {
	Create(ctx context.Context, rec *SubmissionRecord) error
	List(ctx context.Context, limit, offset int) ([]SubmissionRecord, int, error)
}

// ContactUsecase defines the contact form operations
type ContactUsecase interface {
	// Submit runs a complete submission for a stateless client.
	Submit(ctx context.Context, req *ContactRequest, meta RequestMeta) (contact.Snapshot, error)

	// Form sessions for interactive clients.
	OpenForm(ctx context.Context) (contact.Snapshot, error)
	GetForm(ctx context.Context, id string) (contact.Snapshot, error)
	UpdateField(ctx context.Context, id string, field string, value string) (*FieldUpdateResult, error)
	SubmitForm(ctx context.Context, id string, meta RequestMeta) (contact.Snapshot, error)
	ResetForm(ctx context.Context, id string) (contact.Snapshot, error)
	WatchMood(ctx context.Context, id string) (<-chan contact.Mood, error)

	// ListSubmissions returns the audit log, newest first.
	ListSubmissions(ctx context.Context, limit, offset int) (*SubmissionPage, error)
	// ExportSubmissions renders the audit log as xlsx or csv.
	ExportSubmissions(ctx context.Context, format string) ([]byte, string, error)

	// FallbackEmail is the human contact channel shown when submissions fail.
	FallbackEmail() string
}
