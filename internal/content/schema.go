package content

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// dateLayouts are the accepted spellings of publishDate.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Date is a frontmatter date. Both YAML dates and quoted strings are accepted.
type Date time.Time

func (d *Date) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: publishDate must be a date", n.Line)
	}
	v := strings.TrimSpace(n.Value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*d = Date(t)
			return nil
		}
	}
	return fmt.Errorf("line %d: cannot parse %q as a date", n.Line, n.Value)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(time.RFC3339))
}

// Time returns d as a time.Time.
func (d Date) Time() time.Time {
	return time.Time(d)
}

// JSONSchema describes Date for schema export.
func (Date) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Format:      "date",
		Description: "YYYY-MM-DD or RFC 3339 timestamp",
	}
}

// BlogFrontmatter is the metadata block of a blog post. Pointer fields tell
// a missing or null key apart from an empty value; only the former is an
// error, as in the site's own schema.
type BlogFrontmatter struct {
	Title       *string  `yaml:"title" json:"title" validate:"required" jsonschema:"required"`
	Description *string  `yaml:"description" json:"description" validate:"required" jsonschema:"required"`
	PublishDate Date     `yaml:"publishDate" json:"publishDate" jsonschema:"required"`
	Lang        string   `yaml:"lang" json:"lang" validate:"content_lang" jsonschema:"required,enum=en,enum=es"`
	Slug        *string  `yaml:"slug" json:"slug" validate:"required" jsonschema:"required"`
	Tags        []string `yaml:"tags" json:"tags" validate:"required" jsonschema:"required"`
	Author      *string  `yaml:"author" json:"author" validate:"required" jsonschema:"required"`
	ReadingTime *float64 `yaml:"readingTime" json:"readingTime" validate:"required" jsonschema:"required"`
	Image       *string  `yaml:"image" json:"image" validate:"required,url" jsonschema:"required,format=uri"`
}

// ProjectFrontmatter is the metadata block of a project page.
type ProjectFrontmatter struct {
	Title        *string  `yaml:"title" json:"title" validate:"required" jsonschema:"required"`
	Description  *string  `yaml:"description" json:"description" validate:"required" jsonschema:"required"`
	PublishDate  Date     `yaml:"publishDate" json:"publishDate" jsonschema:"required"`
	Technologies []string `yaml:"technologies" json:"technologies" validate:"required" jsonschema:"required"`
	Tags         []string `yaml:"tags" json:"tags" validate:"required" jsonschema:"required"`
	Role         *string  `yaml:"role" json:"role" validate:"required" jsonschema:"required"`
	Company      *string  `yaml:"company" json:"company" validate:"required" jsonschema:"required"`
	Status       *string  `yaml:"status" json:"status" validate:"required" jsonschema:"required"`
	Lang         string   `yaml:"lang" json:"lang" validate:"content_lang" jsonschema:"required,enum=en,enum=es"`
	ImageName    *string  `yaml:"imageName" json:"imageName" validate:"required" jsonschema:"required"`
}

// str dereferences an optional frontmatter string.
func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// registerStructRules adds the checks struct tags cannot express.
func registerStructRules(v *validator.Validate) {
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		if d := sl.Current().Interface().(BlogFrontmatter).PublishDate; d.Time().IsZero() {
			sl.ReportError(d, "publishDate", "PublishDate", "required", "")
		}
	}, BlogFrontmatter{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		if d := sl.Current().Interface().(ProjectFrontmatter).PublishDate; d.Time().IsZero() {
			sl.ReportError(d, "publishDate", "PublishDate", "required", "")
		}
	}, ProjectFrontmatter{})
}

// JSONSchema returns the JSON Schema of a collection kind's frontmatter.
func JSONSchema(kind string) (*jsonschema.Schema, error) {
	r := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	switch kind {
	case "blog":
		s := r.Reflect(&BlogFrontmatter{})
		s.Title = "Blog post frontmatter"
		return s, nil
	case "projects":
		s := r.Reflect(&ProjectFrontmatter{})
		s.Title = "Project frontmatter"
		return s, nil
	}
	return nil, fmt.Errorf("unknown collection kind %q", kind)
}
