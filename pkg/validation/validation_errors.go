package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps reported field names to user-friendly labels
var FieldLabels = map[string]string{
	// Contact request fields
	"name":    "Name",
	"email":   "Email",
	"subject": "Subject",
	"message": "Message",
	"value":   "Value",

	// Frontmatter fields
	"title":        "Title",
	"description":  "Description",
	"publishDate":  "Publish date",
	"lang":         "Language",
	"slug":         "Slug",
	"tags":         "Tags",
	"author":       "Author",
	"readingTime":  "Reading time",
	"image":        "Image",
	"technologies": "Technologies",
	"role":         "Role",
	"company":      "Company",
	"status":       "Status",
	"imageName":    "Image name",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// FieldErrors maps each failing field to its message; the first failure wins.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	out := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		key := fieldPath(e)
		if _, seen := out[key]; !seen {
			out[key] = formatSingleError(e)
		}
	}
	return out
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required", "trimmed_required":
		return fmt.Sprintf("%s: is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s: must contain at least %s items", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)

	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", label, param)

	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.Join(strings.Fields(param), ", "))

	case "content_lang":
		return fmt.Sprintf("%s: must be one of: en, es", label)

	case "email", "basic_email":
		return fmt.Sprintf("%s: invalid email format", label)

	case "url":
		return fmt.Sprintf("%s: invalid URL", label)

	case "uuid", "uuid4":
		return fmt.Sprintf("%s: invalid identifier", label)

	default:
		// Fallback for unknown tags
		return fmt.Sprintf("%s: failed validation (%s)", label, e.Tag())
	}
}

// fieldPath drops the root struct name from the namespace ("BlogFrontmatter.tags[0]" -> "tags[0]").
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	base := fieldName
	if i := strings.Index(base, "["); i >= 0 {
		base = base[:i]
	}
	if label, ok := FieldLabels[base]; ok {
		return label + fieldName[len(base):]
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
