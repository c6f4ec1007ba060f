// Package content validates the frontmatter of the site's markdown
// collections and turns it into index entries.
package content

import "obsidiana-backend/internal/domain"

// Collection is a directory of markdown files sharing one schema.
type Collection struct {
	Name string
	Kind domain.ContentKind
	Lang string
	Dir  string // relative to the content root
}

// Collections mirrors the site's content configuration.
var Collections = []Collection{
	{Name: "blogEn", Kind: domain.KindBlog, Lang: "en", Dir: "blog/en"},
	{Name: "blogEs", Kind: domain.KindBlog, Lang: "es", Dir: "blog/es"},
	{Name: "projectsEn", Kind: domain.KindProject, Lang: "en", Dir: "projects/en"},
	{Name: "projectsEs", Kind: domain.KindProject, Lang: "es", Dir: "projects/es"},
}

// LookupCollection finds a collection by name.
func LookupCollection(name string) (Collection, bool) {
	for _, c := range Collections {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// CollectionNames returns the names of all collections.
func CollectionNames() []string {
	names := make([]string, 0, len(Collections))
	for _, c := range Collections {
		names = append(names, c.Name)
	}
	return names
}
