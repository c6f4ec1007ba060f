package domain

import (
	"context"
	"time"
)

// ContentKind separates blog posts from project pages.
type ContentKind string

const (
	KindBlog    ContentKind = "blog"
	KindProject ContentKind = "projects"
)

// ContentEntry is the indexed metadata of one markdown file.
type ContentEntry struct {
	Collection   string    `json:"collection"`
	Kind         string    `json:"kind"`
	Path         string    `json:"path"` // relative to the content root
	Slug         string    `json:"slug"`
	Lang         string    `json:"lang"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PublishDate  time.Time `json:"publish_date"`
	Tags         []string  `json:"tags"`
	Author       string    `json:"author,omitempty"`
	ReadingTime  float64   `json:"reading_time,omitempty"`
	Image        string    `json:"image,omitempty"`
	Technologies []string  `json:"technologies,omitempty"`
	Role         string    `json:"role,omitempty"`
	Company      string    `json:"company,omitempty"`
	Status       string    `json:"status,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContentRepository stores the content index.
type ContentRepository interface {
	Upsert(ctx context.Context, entries []ContentEntry) error
	DeleteMissing(ctx context.Context, collection string, keep []string) (int64, error)
	ListByCollection(ctx context.Context, collection, lang string) ([]ContentEntry, error)
}

// ContentUsecase exposes the indexed content.
type ContentUsecase interface {
	List(ctx context.Context, collection, lang string) ([]ContentEntry, error)
	Sync(ctx context.Context, entries []ContentEntry, collections []string) (*SyncReport, error)
}

// SyncReport summarizes an index sync.
type SyncReport struct {
	Upserted int   `json:"upserted"`
	Deleted  int64 `json:"deleted"`
}
