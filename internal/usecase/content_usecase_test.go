package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"obsidiana-backend/internal/content"
	"obsidiana-backend/internal/domain"
	"obsidiana-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockContentRepo struct {
	mock.Mock
}

func (m *MockContentRepo) Upsert(ctx context.Context, entries []domain.ContentEntry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *MockContentRepo) DeleteMissing(ctx context.Context, collection string, keep []string) (int64, error) {
	args := m.Called(ctx, collection, keep)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContentRepo) ListByCollection(ctx context.Context, collection, lang string) ([]domain.ContentEntry, error) {
	args := m.Called(ctx, collection, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContentEntry), args.Error(1)
}

func TestContentList(t *testing.T) {
	ctx := context.Background()

	t.Run("validates collection and lang", func(t *testing.T) {
		uc := usecase.NewContentUsecase(new(MockContentRepo))

		_, err := uc.List(ctx, "docs", "")
		assert.ErrorIs(t, err, usecase.ErrUnknownCollection)
		_, err = uc.List(ctx, "blogEs", "fr")
		assert.ErrorIs(t, err, usecase.ErrUnsupportedLang)
	})

	t.Run("never returns nil entries", func(t *testing.T) {
		repo := new(MockContentRepo)
		repo.On("ListByCollection", ctx, "blogEs", "es").Return(nil, nil).Once()
		uc := usecase.NewContentUsecase(repo)

		entries, err := uc.List(ctx, "blogEs", "es")
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("index disabled", func(t *testing.T) {
		uc := usecase.NewContentUsecase(nil)
		_, err := uc.List(ctx, "blogEs", "")
		assert.ErrorIs(t, err, usecase.ErrIndexDisabled)
	})
}

func TestContentSync(t *testing.T) {
	ctx := context.Background()
	entries := []domain.ContentEntry{
		{Collection: "blogEs", Path: "blog/es/a.md"},
		{Collection: "blogEs", Path: "blog/es/b.md"},
	}

	repo := new(MockContentRepo)
	repo.On("Upsert", ctx, entries).Return(nil).Once()
	repo.On("DeleteMissing", ctx, "blogEs", []string{"blog/es/a.md", "blog/es/b.md"}).Return(int64(1), nil).Once()
	repo.On("DeleteMissing", ctx, "blogEn", []string(nil)).Return(int64(2), nil).Once()

	report, err := usecase.NewContentUsecase(repo).Sync(ctx, entries, []string{"blogEs", "blogEn"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Upserted)
	assert.Equal(t, int64(3), report.Deleted)
	repo.AssertExpectations(t)
}

func TestContentSyncStopsOnUpsertError(t *testing.T) {
	repo := new(MockContentRepo)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()

	_, err := usecase.NewContentUsecase(repo).Sync(context.Background(), nil, []string{"blogEs"})
	assert.ErrorContains(t, err, "boom")
	repo.AssertNotCalled(t, "DeleteMissing", mock.Anything, mock.Anything, mock.Anything)
}

func TestContentIndexer(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "blog", "es")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("hola.md", `---
title: Hola
description: Primer post
publishDate: 2024-01-15
lang: es
slug: hola
tags: [intro]
author: Ariel
readingTime: 2
image: https://example.com/hola.png
---
`)
	opts := content.Options{Collections: []string{"blogEs"}}

	t.Run("syncs a valid tree", func(t *testing.T) {
		repo := new(MockContentRepo)
		repo.On("Upsert", mock.Anything, mock.MatchedBy(func(es []domain.ContentEntry) bool {
			return len(es) == 1 && es[0].Slug == "hola"
		})).Return(nil).Once()
		repo.On("DeleteMissing", mock.Anything, "blogEs", []string{"blog/es/hola.md"}).Return(int64(0), nil).Once()

		res, err := usecase.NewContentIndexer(usecase.NewContentUsecase(repo), root, opts).Reindex(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Sync.Upserted)
		repo.AssertExpectations(t)
	})

	t.Run("invalid tree writes nothing", func(t *testing.T) {
		write("roto.md", "---\ntitle: Roto\n---\n")
		t.Cleanup(func() { os.Remove(filepath.Join(dir, "roto.md")) })

		repo := new(MockContentRepo)
		res, err := usecase.NewContentIndexer(usecase.NewContentUsecase(repo), root, opts).Reindex(context.Background())
		assert.ErrorIs(t, err, usecase.ErrContentInvalid)
		require.NotNil(t, res)
		assert.False(t, res.Report.OK())
		assert.Nil(t, res.Sync)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}
