package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"obsidiana-backend/internal/contact"
	"obsidiana-backend/internal/domain"
	"obsidiana-backend/pkg/logger"
	"obsidiana-backend/pkg/security"

	"github.com/google/uuid"
)

var (
	ErrFormNotFound  = errors.New("contact form not found")
	ErrAuditDisabled = errors.New("submission audit log is not configured")
)

// moodBuffer is the per-watcher queue; a slow watcher loses its oldest events.
const moodBuffer = 8

// ContactConfig holds the contact form settings.
type ContactConfig struct {
	SiteName      string
	FallbackError string
	FallbackEmail string
	FormTTL       time.Duration
	SweepInterval time.Duration
}

// configurable is implemented by relays that can be left unconfigured.
type configurable interface {
	IsConfigured() bool
}

// ContactService runs contact submissions and keeps form sessions.
type ContactService struct {
	relay  contact.Relay
	repo   domain.SubmissionRepository
	secLog *security.SecurityLogger
	cfg    ContactConfig
	forms  *formStore
}

var _ domain.ContactUsecase = (*ContactService)(nil)

// NewContactUsecase creates a new contact usecase. repo may be nil when no
// database is configured. Call Close to stop the session sweeper.
func NewContactUsecase(relay contact.Relay, repo domain.SubmissionRepository, secLog *security.SecurityLogger, cfg ContactConfig) *ContactService {
	if secLog == nil {
		secLog = security.DefaultLogger()
	}
	uc := &ContactService{
		relay:  relay,
		repo:   repo,
		secLog: secLog,
		cfg:    cfg,
		forms:  newFormStore(cfg.FormTTL, nil),
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	uc.forms.startSweeper(interval)
	return uc
}

// Close stops background work.
func (uc *ContactService) Close() {
	uc.forms.close()
}

func (uc *ContactService) FallbackEmail() string {
	return uc.cfg.FallbackEmail
}

func (uc *ContactService) newForm() *contact.Form {
	relay := uc.relay
	if c, ok := relay.(configurable); ok && !c.IsConfigured() {
		relay = nil
	}
	return contact.NewForm(contact.Config{
		ID:            uuid.NewString(),
		Relay:         relay,
		SiteName:      uc.cfg.SiteName,
		FallbackError: uc.cfg.FallbackError,
	})
}

// Submit fills a throwaway form with the request and submits it.
func (uc *ContactService) Submit(ctx context.Context, req *domain.ContactRequest, meta domain.RequestMeta) (contact.Snapshot, error) {
	form := uc.newForm()
	in := req.Input()
	for _, f := range contact.Fields {
		if _, err := form.SetField(f, in.Get(f)); err != nil {
			return form.Snapshot(), err
		}
	}
	return uc.submit(ctx, form, meta)
}

func (uc *ContactService) OpenForm(ctx context.Context) (contact.Snapshot, error) {
	form := uc.newForm()
	uc.forms.put(form)
	logger.Log.Debug("contact form opened", "form_id", form.ID())
	return form.Snapshot(), nil
}

func (uc *ContactService) GetForm(ctx context.Context, id string) (contact.Snapshot, error) {
	form, ok := uc.forms.get(id)
	if !ok {
		return contact.Snapshot{}, ErrFormNotFound
	}
	return form.Snapshot(), nil
}

func (uc *ContactService) UpdateField(ctx context.Context, id string, field string, value string) (*domain.FieldUpdateResult, error) {
	form, ok := uc.forms.get(id)
	if !ok {
		return nil, ErrFormNotFound
	}
	f, err := contact.ParseField(field)
	if err != nil {
		return nil, err
	}
	verr, err := form.SetField(f, value)
	if err != nil {
		return nil, err
	}
	return &domain.FieldUpdateResult{Field: f, Error: verr, Form: form.Snapshot()}, nil
}

func (uc *ContactService) SubmitForm(ctx context.Context, id string, meta domain.RequestMeta) (contact.Snapshot, error) {
	form, ok := uc.forms.get(id)
	if !ok {
		return contact.Snapshot{}, ErrFormNotFound
	}
	return uc.submit(ctx, form, meta)
}

func (uc *ContactService) ResetForm(ctx context.Context, id string) (contact.Snapshot, error) {
	form, ok := uc.forms.get(id)
	if !ok {
		return contact.Snapshot{}, ErrFormNotFound
	}
	if err := form.Reset(); err != nil {
		return form.Snapshot(), err
	}
	return form.Snapshot(), nil
}

// WatchMood streams mood changes of a form, starting with the current mood,
// until ctx is done.
func (uc *ContactService) WatchMood(ctx context.Context, id string) (<-chan contact.Mood, error) {
	form, ok := uc.forms.get(id)
	if !ok {
		return nil, ErrFormNotFound
	}

	b := &moodBridge{ch: make(chan contact.Mood, moodBuffer)}
	unsubscribe := form.SubscribeCurrent(b)

	go func() {
		<-ctx.Done()
		unsubscribe()
		b.close()
	}()
	return b.ch, nil
}

func (uc *ContactService) ListSubmissions(ctx context.Context, limit, offset int) (*domain.SubmissionPage, error) {
	if uc.repo == nil {
		return nil, ErrAuditDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if items == nil {
		items = []domain.SubmissionRecord{}
	}
	return &domain.SubmissionPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// submit runs the form submission and records what happened, using the
// values the relay actually received.
func (uc *ContactService) submit(ctx context.Context, form *contact.Form, meta domain.RequestMeta) (contact.Snapshot, error) {
	in, err := form.SubmitValues(ctx)
	snap := form.Snapshot()

	var verrs contact.ValidationErrors
	var subErr *contact.SubmissionError
	switch {
	case err == nil:
		uc.secLog.LogContactSubmitted(ctx, in.Email, meta.ClientIP, meta.RequestID, form.ID())
		uc.record(ctx, form.ID(), snap, in, meta)
	case errors.As(err, &subErr):
		uc.secLog.LogContactFailed(ctx, in.Email, meta.ClientIP, meta.RequestID, form.ID(), subErr.Error())
		uc.record(ctx, form.ID(), snap, in, meta)
	case errors.As(err, &verrs):
		fields := make([]string, 0, len(verrs))
		for _, v := range verrs {
			fields = append(fields, string(v.Field))
		}
		uc.secLog.LogValidationFailed(ctx, meta.ClientIP, meta.RequestID, form.ID(), fields)
	}
	return snap, err
}

func (uc *ContactService) record(ctx context.Context, formID string, snap contact.Snapshot, in contact.Input, meta domain.RequestMeta) {
	if uc.repo == nil {
		return
	}
	rec := &domain.SubmissionRecord{
		ID:           uuid.NewString(),
		FormID:       formID,
		State:        snap.State.String(),
		ErrorMessage: snap.ErrorMessage,
		SenderEmail:  security.MaskEmail(in.Email),
		Subject:      in.Subject,
		ClientIP:     meta.ClientIP,
		CreatedAt:    time.Now().UTC(),
	}
	// the request may already be cancelled; the audit row should still land
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := uc.repo.Create(recCtx, rec); err != nil {
		logger.Log.Error("Failed to record contact submission", "form_id", formID, "error", err)
	}
}

// moodBridge forwards mood events to a channel without blocking the form.
type moodBridge struct {
	mu     sync.Mutex
	ch     chan contact.Mood
	closed bool
}

func (b *moodBridge) MoodChanged(_ string, m contact.Mood) {
	b.send(m)
}

func (b *moodBridge) send(m contact.Mood) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	// a slow reader only needs the latest mood, so the oldest queued one gives way
	for {
		select {
		case b.ch <- m:
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}

func (b *moodBridge) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.ch)
	}
}
