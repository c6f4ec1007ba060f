package content_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"obsidiana-backend/internal/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBlog = `---
title: Construyendo un blog
description: Notas sobre el sitio
publishDate: 2024-03-01
lang: es
slug: construyendo-un-blog
tags: [astro, go]
author: Ariel
readingTime: 4.5
image: https://example.com/cover.webp
---
Contenido.
`

const validProject = `---
title: Obsidiana
description: Portfolio site
publishDate: "2024-05-10T09:00:00Z"
technologies: [Astro, Tailwind]
tags: [web]
role: Developer
company: Freelance
status: Live
lang: en
imageName: obsidiana
---
Body.
`

func writeContent(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func errorsFor(r *content.Report, file string) []content.Issue {
	var out []content.Issue
	for _, it := range r.Issues {
		if it.File == file && it.Severity == content.SeverityError {
			out = append(out, it)
		}
	}
	return out
}

func hasField(issues []content.Issue, field string) bool {
	for _, it := range issues {
		if it.Field == field {
			return true
		}
	}
	return false
}

func TestCheckValidTree(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "blog/es/construyendo.md", validBlog)
	writeContent(t, root, "projects/en/2024/obsidiana.md", validProject)
	writeContent(t, root, "blog/es/notes.txt", "ignored")

	report, err := content.NewChecker(content.Options{}).Check(root)
	require.NoError(t, err)

	assert.True(t, report.OK(), "issues: %v", report.Issues)
	assert.Equal(t, 2, report.Files)
	require.Len(t, report.Entries, 2)

	_, warns := report.Counts()
	assert.Equal(t, 2, warns, "blog/en and projects/es have no directory")

	byPath := map[string]string{}
	for _, e := range report.Entries {
		byPath[e.Path] = e.Slug
	}
	assert.Equal(t, "construyendo-un-blog", byPath["blog/es/construyendo.md"])
	assert.Equal(t, "obsidiana", byPath["projects/en/2024/obsidiana.md"])

	for _, e := range report.Entries {
		if e.Collection == "projectsEn" {
			assert.Equal(t, []string{"Astro", "Tailwind"}, e.Technologies)
			assert.Equal(t, 2024, e.PublishDate.Year())
		}
	}
}

func TestCheckRejectsBadFrontmatter(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(string) string
		field string
	}{
		{"missing title", func(s string) string { return strings.Replace(s, "title: Construyendo un blog\n", "", 1) }, "title"},
		{"null author", func(s string) string { return strings.Replace(s, "author: Ariel", "author: ~", 1) }, "author"},
		{"bad lang", func(s string) string { return strings.Replace(s, "lang: es", "lang: fr", 1) }, "lang"},
		{"image not a url", func(s string) string {
			return strings.Replace(s, "image: https://example.com/cover.webp", "image: cover.webp", 1)
		}, "image"},
		{"missing reading time", func(s string) string { return strings.Replace(s, "readingTime: 4.5\n", "", 1) }, "readingTime"},
		{"missing publish date", func(s string) string { return strings.Replace(s, "publishDate: 2024-03-01\n", "", 1) }, "publishDate"},
		{"missing tags", func(s string) string { return strings.Replace(s, "tags: [astro, go]\n", "", 1) }, "tags"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeContent(t, root, "blog/es/post.md", tc.edit(validBlog))

			report, err := content.NewChecker(content.Options{}).Check(root)
			require.NoError(t, err)

			assert.False(t, report.OK())
			assert.Empty(t, report.Entries)
			issues := errorsFor(report, "blog/es/post.md")
			assert.True(t, hasField(issues, tc.field), "want issue on %s, got %v", tc.field, issues)
		})
	}
}

func TestCheckAcceptsEmptyValues(t *testing.T) {
	src := strings.NewReplacer(
		"readingTime: 4.5", "readingTime: 0",
		"tags: [astro, go]", `tags: [""]`,
		"author: Ariel", `author: ""`,
		"description: Notas sobre el sitio", "description: \"\"",
	).Replace(validBlog)
	project := strings.NewReplacer(
		"technologies: [Astro, Tailwind]", "technologies: []",
		"status: Live", `status: ""`,
	).Replace(validProject)

	root := t.TempDir()
	writeContent(t, root, "blog/es/post.md", src)
	writeContent(t, root, "projects/en/obsidiana.md", project)

	report, err := content.NewChecker(content.Options{}).Check(root)
	require.NoError(t, err)
	assert.Empty(t, errorsFor(report, "blog/es/post.md"))
	assert.Empty(t, errorsFor(report, "projects/en/obsidiana.md"))
	require.Len(t, report.Entries, 2)
	for _, e := range report.Entries {
		if e.Kind == "blog" {
			assert.Equal(t, 0.0, e.ReadingTime)
			assert.Equal(t, []string{""}, e.Tags)
			assert.Empty(t, e.Author)
		}
	}
}

func TestCheckUnknownKeys(t *testing.T) {
	src := strings.Replace(validBlog, "author: Ariel\n", "author: Ariel\ndraft: true\n", 1)

	t.Run("rejected by default", func(t *testing.T) {
		root := t.TempDir()
		writeContent(t, root, "blog/es/post.md", src)

		report, err := content.NewChecker(content.Options{}).Check(root)
		require.NoError(t, err)
		issues := errorsFor(report, "blog/es/post.md")
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "draft")
	})

	t.Run("allowed when configured", func(t *testing.T) {
		root := t.TempDir()
		writeContent(t, root, "blog/es/post.md", src)

		report, err := content.NewChecker(content.Options{AllowUnknownKeys: true}).Check(root)
		require.NoError(t, err)
		assert.True(t, report.OK(), "issues: %v", report.Issues)
	})
}

func TestCheckCollectionRules(t *testing.T) {
	t.Run("lang must match the collection", func(t *testing.T) {
		root := t.TempDir()
		writeContent(t, root, "blog/en/post.md", validBlog)

		report, err := content.NewChecker(content.Options{}).Check(root)
		require.NoError(t, err)
		issues := errorsFor(report, "blog/en/post.md")
		assert.True(t, hasField(issues, "lang"))
	})

	t.Run("duplicate slugs", func(t *testing.T) {
		root := t.TempDir()
		writeContent(t, root, "blog/es/a.md", validBlog)
		writeContent(t, root, "blog/es/b.md", validBlog)

		report, err := content.NewChecker(content.Options{}).Check(root)
		require.NoError(t, err)
		assert.Len(t, report.Entries, 1)
		assert.True(t, hasField(errorsFor(report, "blog/es/b.md"), "slug"))
	})

	t.Run("missing frontmatter", func(t *testing.T) {
		root := t.TempDir()
		writeContent(t, root, "blog/es/plain.md", "# No metadata\n")

		report, err := content.NewChecker(content.Options{}).Check(root)
		require.NoError(t, err)
		issues := errorsFor(report, "blog/es/plain.md")
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "missing frontmatter")
	})

	t.Run("project image must exist", func(t *testing.T) {
		root := t.TempDir()
		assets := t.TempDir()
		writeContent(t, root, "projects/en/obsidiana.md", validProject)

		checker := content.NewChecker(content.Options{AssetsDir: assets})
		report, err := checker.Check(root)
		require.NoError(t, err)
		assert.True(t, hasField(errorsFor(report, "projects/en/obsidiana.md"), "imageName"))

		writePNG(t, filepath.Join(assets, "obsidiana.png"), 4, 4)
		report, err = checker.Check(root)
		require.NoError(t, err)
		assert.True(t, report.OK(), "issues: %v", report.Issues)
	})
}

func TestCheckSelectedCollections(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "blog/es/post.md", validBlog)

	report, err := content.NewChecker(content.Options{Collections: []string{"blogEs"}}).Check(root)
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
	assert.Len(t, report.Entries, 1)

	_, err = content.NewChecker(content.Options{Collections: []string{"docs"}}).Check(root)
	assert.Error(t, err)
}

func TestCheckRootMustExist(t *testing.T) {
	_, err := content.NewChecker(content.Options{}).Check(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
