package usecase

import (
	"context"
	"errors"
	"fmt"

	"obsidiana-backend/internal/content"
	"obsidiana-backend/internal/domain"
	"obsidiana-backend/pkg/logger"
	"obsidiana-backend/pkg/validation"
)

var (
	ErrUnknownCollection = errors.New("unknown content collection")
	ErrUnsupportedLang   = errors.New("unsupported content language")
	ErrIndexDisabled     = errors.New("content index is not configured")
)

type contentUsecase struct {
	repo domain.ContentRepository
}

// NewContentUsecase creates the content index usecase. repo may be nil when
// no database is configured.
func NewContentUsecase(repo domain.ContentRepository) domain.ContentUsecase {
	return &contentUsecase{repo: repo}
}

// List returns indexed entries of a collection, optionally filtered by lang.
func (uc *contentUsecase) List(ctx context.Context, collection, lang string) ([]domain.ContentEntry, error) {
	if uc.repo == nil {
		return nil, ErrIndexDisabled
	}
	if _, ok := content.LookupCollection(collection); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	if lang != "" && !validation.SupportedLangs[lang] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLang, lang)
	}
	entries, err := uc.repo.ListByCollection(ctx, collection, lang)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	if entries == nil {
		entries = []domain.ContentEntry{}
	}
	return entries, nil
}

// Sync upserts entries and removes rows of the given collections whose file
// no longer exists.
func (uc *contentUsecase) Sync(ctx context.Context, entries []domain.ContentEntry, collections []string) (*domain.SyncReport, error) {
	if uc.repo == nil {
		return nil, ErrIndexDisabled
	}
	if err := uc.repo.Upsert(ctx, entries); err != nil {
		return nil, fmt.Errorf("upsert content: %w", err)
	}

	keep := make(map[string][]string, len(collections))
	for _, e := range entries {
		keep[e.Collection] = append(keep[e.Collection], e.Path)
	}

	report := &domain.SyncReport{Upserted: len(entries)}
	for _, c := range collections {
		n, err := uc.repo.DeleteMissing(ctx, c, keep[c])
		if err != nil {
			return nil, fmt.Errorf("prune %s: %w", c, err)
		}
		report.Deleted += n
	}
	return report, nil
}

// ErrContentInvalid is returned by Reindex when validation found errors.
var ErrContentInvalid = errors.New("content has validation errors")

// IndexResult is the outcome of a Reindex run. Sync is nil when nothing was
// written.
type IndexResult struct {
	Report *content.Report    `json:"report"`
	Sync   *domain.SyncReport `json:"sync,omitempty"`
}

// ContentIndexer validates a content tree and syncs it into the index.
type ContentIndexer struct {
	uc   domain.ContentUsecase
	root string
	opts content.Options
}

func NewContentIndexer(uc domain.ContentUsecase, root string, opts content.Options) *ContentIndexer {
	return &ContentIndexer{uc: uc, root: root, opts: opts}
}

// Reindex refuses to touch the index when any file is invalid, so a broken
// tree never prunes good rows.
func (ix *ContentIndexer) Reindex(ctx context.Context) (*IndexResult, error) {
	report, err := content.NewChecker(ix.opts).Check(ix.root)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", ix.root, err)
	}
	res := &IndexResult{Report: report}
	if !report.OK() {
		return res, ErrContentInvalid
	}

	names := ix.opts.Collections
	if len(names) == 0 {
		names = content.CollectionNames()
	}
	res.Sync, err = ix.uc.Sync(ctx, report.Entries, names)
	if err != nil {
		return res, err
	}
	logger.Log.Info("Content index synced",
		"files", report.Files,
		"upserted", res.Sync.Upserted,
		"deleted", res.Sync.Deleted,
	)
	return res, nil
}
