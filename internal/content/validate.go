package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"obsidiana-backend/internal/domain"
	"obsidiana-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a content file.
type Issue struct {
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	loc := i.File
	if i.Field != "" {
		loc = fmt.Sprintf("%s (%s)", i.File, i.Field)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, loc, i.Message)
}

// Report is the outcome of validating a content tree.
type Report struct {
	Files   int                   `json:"files"`
	Entries []domain.ContentEntry `json:"-"`
	Issues  []Issue               `json:"issues"`
}

// Counts returns the number of errors and warnings.
func (r *Report) Counts() (errs, warns int) {
	for _, it := range r.Issues {
		switch it.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warns++
		}
	}
	return errs, warns
}

// OK reports whether no errors were found.
func (r *Report) OK() bool {
	errs, _ := r.Counts()
	return errs == 0
}

// Options tunes a Checker.
type Options struct {
	// AllowUnknownKeys accepts frontmatter keys outside the schema.
	AllowUnknownKeys bool
	// AssetsDir, when set, is searched for project cover images.
	AssetsDir string
	// Collections restricts the run to the named collections.
	Collections []string
}

// Checker validates content trees.
type Checker struct {
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

// NewChecker returns a Checker using the shared validation rules.
func NewChecker(opts Options) *Checker {
	v := validation.New()
	registerStructRules(v)
	return &Checker{validate: v, opts: opts, now: time.Now}
}

// Check validates every markdown file of the selected collections under root.
func (c *Checker) Check(root string) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root is not a directory: %s", root)
	}

	cols, err := c.selected()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, col := range cols {
		c.checkCollection(root, col, report)
	}

	sort.SliceStable(report.Issues, func(i, j int) bool {
		if report.Issues[i].File != report.Issues[j].File {
			return report.Issues[i].File < report.Issues[j].File
		}
		return report.Issues[i].Field < report.Issues[j].Field
	})
	return report, nil
}

func (c *Checker) selected() ([]Collection, error) {
	if len(c.opts.Collections) == 0 {
		return Collections, nil
	}
	out := make([]Collection, 0, len(c.opts.Collections))
	for _, name := range c.opts.Collections {
		col, ok := LookupCollection(name)
		if !ok {
			return nil, fmt.Errorf("unknown collection %q (known: %s)", name, strings.Join(CollectionNames(), ", "))
		}
		out = append(out, col)
	}
	return out, nil
}

func (c *Checker) checkCollection(root string, col Collection, report *Report) {
	dir := filepath.Join(root, filepath.FromSlash(col.Dir))
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			File:     col.Dir,
			Message:  fmt.Sprintf("collection %s has no directory", col.Name),
		})
		return
	}

	slugs := make(map[string]string)
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		rel := relPath(root, path)
		if walkErr != nil {
			report.Issues = append(report.Issues, Issue{Severity: SeverityError, File: rel, Message: walkErr.Error()})
			return nil
		}
		if d.IsDir() || strings.ToLower(filepath.Ext(path)) != ".md" {
			return nil
		}

		report.Files++
		entry, issues := c.CheckFile(root, path, col)
		report.Issues = append(report.Issues, issues...)
		if entry == nil {
			return nil
		}
		if prev, dup := slugs[entry.Slug]; dup {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityError,
				File:     rel,
				Field:    "slug",
				Message:  fmt.Sprintf("duplicate slug %q (also in %s)", entry.Slug, prev),
			})
			return nil
		}
		slugs[entry.Slug] = rel
		report.Entries = append(report.Entries, *entry)
		return nil
	})
}

// CheckFile validates a single file of col. The entry is nil when the file
// has errors.
func (c *Checker) CheckFile(root, path string, col Collection) (*domain.ContentEntry, []Issue) {
	rel := relPath(root, path)
	fail := func(field, msg string) []Issue {
		return []Issue{{Severity: SeverityError, File: rel, Field: field, Message: msg}}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fail("", err.Error())
	}
	meta, _, err := SplitFrontmatter(src)
	if err != nil {
		return nil, fail("", err.Error())
	}

	var (
		entry  *domain.ContentEntry
		target interface{}
		blog   BlogFrontmatter
		proj   ProjectFrontmatter
	)
	if col.Kind == domain.KindBlog {
		target = &blog
	} else {
		target = &proj
	}
	if err := decodeStrict(meta, target, !c.opts.AllowUnknownKeys); err != nil {
		return nil, fail("", "invalid frontmatter: "+err.Error())
	}

	var issues []Issue
	if err := c.validate.Struct(target); err != nil {
		fieldErrs := validation.FieldErrors(err)
		if fieldErrs == nil {
			return nil, fail("", err.Error())
		}
		for field, msg := range fieldErrs {
			issues = append(issues, Issue{Severity: SeverityError, File: rel, Field: field, Message: msg})
		}
	}

	if col.Kind == domain.KindBlog {
		entry = c.blogEntry(rel, col, &blog)
	} else {
		entry = c.projectEntry(rel, col, &proj)
		if name := strings.TrimSpace(str(proj.ImageName)); c.opts.AssetsDir != "" && name != "" {
			if _, err := ResolveImage(c.opts.AssetsDir, name); err != nil {
				issues = append(issues, Issue{Severity: SeverityError, File: rel, Field: "imageName", Message: err.Error()})
			}
		}
	}

	if entry.Lang != "" && validation.SupportedLangs[entry.Lang] && entry.Lang != col.Lang {
		issues = append(issues, Issue{
			Severity: SeverityError,
			File:     rel,
			Field:    "lang",
			Message:  fmt.Sprintf("lang %q does not match collection %s (%s)", entry.Lang, col.Name, col.Lang),
		})
	}
	if !entry.PublishDate.IsZero() && entry.PublishDate.After(c.now().AddDate(1, 0, 0)) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			File:     rel,
			Field:    "publishDate",
			Message:  "publish date is more than a year ahead",
		})
	}

	for _, it := range issues {
		if it.Severity == SeverityError {
			return nil, issues
		}
	}
	return entry, issues
}

func (c *Checker) blogEntry(rel string, col Collection, fm *BlogFrontmatter) *domain.ContentEntry {
	e := &domain.ContentEntry{
		Collection:  col.Name,
		Kind:        string(col.Kind),
		Path:        rel,
		Slug:        strings.TrimSpace(str(fm.Slug)),
		Lang:        fm.Lang,
		Title:       strings.TrimSpace(str(fm.Title)),
		Description: strings.TrimSpace(str(fm.Description)),
		PublishDate: fm.PublishDate.Time(),
		Tags:        fm.Tags,
		Author:      strings.TrimSpace(str(fm.Author)),
		Image:       str(fm.Image),
	}
	if fm.ReadingTime != nil {
		e.ReadingTime = *fm.ReadingTime
	}
	return e
}

func (c *Checker) projectEntry(rel string, col Collection, fm *ProjectFrontmatter) *domain.ContentEntry {
	return &domain.ContentEntry{
		Collection:   col.Name,
		Kind:         string(col.Kind),
		Path:         rel,
		Slug:         slugFromPath(rel),
		Lang:         fm.Lang,
		Title:        strings.TrimSpace(str(fm.Title)),
		Description:  strings.TrimSpace(str(fm.Description)),
		PublishDate:  fm.PublishDate.Time(),
		Tags:         fm.Tags,
		Image:        str(fm.ImageName),
		Technologies: fm.Technologies,
		Role:         strings.TrimSpace(str(fm.Role)),
		Company:      strings.TrimSpace(str(fm.Company)),
		Status:       strings.TrimSpace(str(fm.Status)),
	}
}

// slugFromPath derives a project slug from its file name ("a/b/my-app.md" -> "my-app").
func slugFromPath(rel string) string {
	base := filepath.Base(filepath.FromSlash(rel))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
