package usecase

import (
	"context"
	"testing"
	"time"

	"obsidiana-backend/internal/contact"
	"obsidiana-backend/pkg/web3forms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingRelay struct {
	release chan struct{}
}

func (r blockingRelay) Send(ctx context.Context, _ web3forms.Payload) (*web3forms.Response, error) {
	<-r.release
	return &web3forms.Response{Success: true}, nil
}

func TestFormStoreSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := newFormStore(10*time.Minute, clock)

	idle := contact.NewForm(contact.Config{ID: "idle"})
	fresh := contact.NewForm(contact.Config{ID: "fresh"})
	s.put(idle)
	s.put(fresh)

	now = now.Add(8 * time.Minute)
	_, ok := s.get("fresh")
	require.True(t, ok)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, s.sweep())

	_, ok = s.get("idle")
	assert.False(t, ok)
	_, ok = s.get("fresh")
	assert.True(t, ok)
}

func TestFormStoreKeepsSubmittingForms(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newFormStore(time.Minute, func() time.Time { return now })

	relay := blockingRelay{release: make(chan struct{})}
	f := contact.NewForm(contact.Config{ID: "busy", Relay: relay})
	for fld, v := range map[contact.Field]string{
		contact.FieldName:    "Ada",
		contact.FieldEmail:   "ada@example.com",
		contact.FieldSubject: "Hola",
		contact.FieldMessage: "Mensaje de prueba.",
	} {
		_, err := f.SetField(fld, v)
		require.NoError(t, err)
	}
	s.put(f)

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	require.Eventually(t, func() bool { return f.State() == contact.StateSubmitting }, time.Second, 5*time.Millisecond)

	now = now.Add(time.Hour)
	assert.Equal(t, 0, s.sweep())

	close(relay.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, s.sweep())
}

func TestFormStoreCloseStopsSweeper(t *testing.T) {
	s := newFormStore(time.Minute, nil)
	s.startSweeper(time.Millisecond)
	s.close()
	s.close()
}
