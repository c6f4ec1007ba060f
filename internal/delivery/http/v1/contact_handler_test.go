package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"obsidiana-backend/config"
	"obsidiana-backend/internal/contact"
	"obsidiana-backend/internal/delivery/http/middleware"
	v1 "obsidiana-backend/internal/delivery/http/v1"
	"obsidiana-backend/internal/domain"
	"obsidiana-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockContactUC struct {
	mock.Mock
}

func (m *MockContactUC) Submit(ctx context.Context, req *domain.ContactRequest, meta domain.RequestMeta) (contact.Snapshot, error) {
	args := m.Called(ctx, req, meta)
	return args.Get(0).(contact.Snapshot), args.Error(1)
}

func (m *MockContactUC) OpenForm(ctx context.Context) (contact.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(contact.Snapshot), args.Error(1)
}

func (m *MockContactUC) GetForm(ctx context.Context, id string) (contact.Snapshot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(contact.Snapshot), args.Error(1)
}

func (m *MockContactUC) UpdateField(ctx context.Context, id, field, value string) (*domain.FieldUpdateResult, error) {
	args := m.Called(ctx, id, field, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FieldUpdateResult), args.Error(1)
}

func (m *MockContactUC) SubmitForm(ctx context.Context, id string, meta domain.RequestMeta) (contact.Snapshot, error) {
	args := m.Called(ctx, id, meta)
	return args.Get(0).(contact.Snapshot), args.Error(1)
}

func (m *MockContactUC) ResetForm(ctx context.Context, id string) (contact.Snapshot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(contact.Snapshot), args.Error(1)
}

func (m *MockContactUC) WatchMood(ctx context.Context, id string) (<-chan contact.Mood, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan contact.Mood), args.Error(1)
}

func (m *MockContactUC) ListSubmissions(ctx context.Context, limit, offset int) (*domain.SubmissionPage, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubmissionPage), args.Error(1)
}

func (m *MockContactUC) ExportSubmissions(ctx context.Context, format string) ([]byte, string, error) {
	args := m.Called(ctx, format)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

func (m *MockContactUC) FallbackEmail() string {
	return "hola@example.com"
}

type MockContentUC struct {
	mock.Mock
}

func (m *MockContentUC) List(ctx context.Context, collection, lang string) ([]domain.ContentEntry, error) {
	args := m.Called(ctx, collection, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContentEntry), args.Error(1)
}

func (m *MockContentUC) Sync(ctx context.Context, entries []domain.ContentEntry, collections []string) (*domain.SyncReport, error) {
	args := m.Called(ctx, entries, collections)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncReport), args.Error(1)
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     json.RawMessage `json:"error"`
	RequestID string          `json:"request_id"`
}

type testServer struct {
	router    *gin.Engine
	contactUC *MockContactUC
	contentUC *MockContentUC
}

func newTestServer(t *testing.T, indexer v1.Reindexer) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	limiter := middleware.NewRateLimiter(nil, nil)
	t.Cleanup(limiter.Close)

	s := &testServer{contactUC: new(MockContactUC), contentUC: new(MockContentUC)}
	s.router = v1.NewRouter(v1.RouterDeps{
		ContactUC:   s.contactUC,
		ContentUC:   s.contentUC,
		HealthUC:    usecase.NewHealthUsecase(nil),
		Indexer:     indexer,
		RateLimiter: limiter,
		Config: &config.Config{
			GinMode:                   gin.TestMode,
			RateLimitWindowSeconds:    60,
			RateLimitContactThreshold: 3,
			RateLimitGlobalThreshold:  1000,
			AdminJWTSecret:            adminSecret,
		},
	})
	return s
}

func (s *testServer) do(method, path, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

const contactBody = `{"name":"Ada","email":"ada@example.com","subject":"Hola","message":"Un mensaje largo."}`

func TestSubmitContact(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(t, nil)
		snap := contact.Snapshot{ID: "f1", State: contact.StateSubmitted, Mood: contact.MoodPositive}
		s.contactUC.On("Submit", mock.Anything, mock.MatchedBy(func(r *domain.ContactRequest) bool {
			return r.Name == "Ada" && r.Email == "ada@example.com"
		}), mock.Anything).Return(snap, nil).Once()

		w, env := s.do(http.MethodPost, "/v1/contact", contactBody)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.NotEmpty(t, env.RequestID)
		assert.Contains(t, string(env.Data), `"state":"submitted"`)
		assert.Contains(t, string(env.Data), `"mood":"positive"`)
	})

	t.Run("validation errors are field scoped", func(t *testing.T) {
		s := newTestServer(t, nil)
		verrs := contact.ValidateInput(contact.Input{Name: "Ada", Email: "nope", Subject: "Hola", Message: "Un mensaje largo."})
		s.contactUC.On("Submit", mock.Anything, mock.Anything, mock.Anything).
			Return(contact.Snapshot{ID: "f1", State: contact.StateIdle}, verrs).Once()

		w, env := s.do(http.MethodPost, "/v1/contact", contactBody)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)

		var details v1.FormErrorDetails
		require.NoError(t, json.Unmarshal(env.Error, &details))
		require.Contains(t, details.Fields, contact.FieldEmail)
		assert.Equal(t, contact.ReasonInvalidFormat, details.Fields[contact.FieldEmail].Reason)
		assert.Equal(t, "Por favor ingresa un email válido", details.Fields[contact.FieldEmail].Message)
	})

	t.Run("relay failure offers fallback email", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.contactUC.On("Submit", mock.Anything, mock.Anything, mock.Anything).
			Return(contact.Snapshot{ID: "f1", State: contact.StateFailed, ErrorMessage: "bad"}, &contact.SubmissionError{Message: "bad"}).Once()

		w, env := s.do(http.MethodPost, "/v1/contact", contactBody)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "bad", env.Message)

		var details v1.FormErrorDetails
		require.NoError(t, json.Unmarshal(env.Error, &details))
		assert.Equal(t, "hola@example.com", details.FallbackEmail)
		require.NotNil(t, details.Form)
		assert.Equal(t, contact.StateFailed, details.Form.State)
	})

	t.Run("relay not configured", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.contactUC.On("Submit", mock.Anything, mock.Anything, mock.Anything).
			Return(contact.Snapshot{}, contact.ErrRelayNotConfigured).Once()

		w, _ := s.do(http.MethodPost, "/v1/contact", contactBody)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t, nil)
		w, env := s.do(http.MethodPost, "/v1/contact", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		s.contactUC.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rate limited", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.contactUC.On("Submit", mock.Anything, mock.Anything, mock.Anything).
			Return(contact.Snapshot{ID: "f1", State: contact.StateSubmitted}, nil)

		for i := 0; i < 3; i++ {
			w, _ := s.do(http.MethodPost, "/v1/contact", contactBody)
			require.Equal(t, http.StatusOK, w.Code)
		}
		w, _ := s.do(http.MethodPost, "/v1/contact", contactBody)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})
}

func TestFormRoutes(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.contactUC.On("OpenForm", mock.Anything).Return(contact.Snapshot{ID: "f1", Mood: contact.MoodNeutral}, nil).Once()

		w, env := s.do(http.MethodPost, "/v1/contact/forms", "")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, string(env.Data), `"id":"f1"`)
	})

	t.Run("unknown form", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.contactUC.On("GetForm", mock.Anything, "nope").Return(contact.Snapshot{}, usecase.ErrFormNotFound).Once()

		w, _ := s.do(http.MethodGet, "/v1/contact/forms/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("field update reports eager validation", func(t *testing.T) {
		s := newTestServer(t, nil)
		verr := contact.Validate(contact.FieldMessage, "corto")
		s.contactUC.On("UpdateField", mock.Anything, "f1", "message", "corto").
			Return(&domain.FieldUpdateResult{Field: contact.FieldMessage, Error: verr}, nil).Once()

		w, env := s.do(http.MethodPut, "/v1/contact/forms/f1/fields/message", `{"value":"corto"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(env.Data), `"reason":"too_short"`)
	})

	t.Run("unknown field", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.contactUC.On("UpdateField", mock.Anything, "f1", "phone", "1").
			Return(nil, contact.ErrUnknownField).Once()

		w, _ := s.do(http.MethodPut, "/v1/contact/forms/f1/fields/phone", `{"value":"1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("submit while in flight", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.contactUC.On("SubmitForm", mock.Anything, "f1", mock.Anything).
			Return(contact.Snapshot{ID: "f1", State: contact.StateSubmitting}, contact.ErrSubmissionInFlight).Once()

		w, _ := s.do(http.MethodPost, "/v1/contact/forms/f1/submit", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("reset from idle", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.contactUC.On("ResetForm", mock.Anything, "f1").
			Return(contact.Snapshot{ID: "f1"}, fmt.Errorf("%w: reset from idle", contact.ErrInvalidTransition)).Once()

		w, _ := s.do(http.MethodPost, "/v1/contact/forms/f1/reset", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

// closeNotifyingRecorder lets gin's Stream run against a recorder.
type closeNotifyingRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyingRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func TestStreamMood(t *testing.T) {
	s := newTestServer(t, nil)

	moods := make(chan contact.Mood, 2)
	moods <- contact.MoodNeutral
	moods <- contact.MoodAttentive
	close(moods)
	s.contactUC.On("WatchMood", mock.Anything, "f1").Return((<-chan contact.Mood)(moods), nil).Once()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/v1/contact/forms/f1/mood", nil).WithContext(ctx)
	w := &closeNotifyingRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool)}
	s.router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "event:mood")
	assert.Contains(t, body, `"mood":"neutral"`)
	assert.Contains(t, body, `"mood":"attentive"`)
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t, nil)
	w, env := s.do(http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "System operational", env.Message)
}
