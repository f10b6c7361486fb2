package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparseable indicates the model response contained no extractable JSON
// object. Distinct from SchemaError so callers can tell a garbled response
// from a well-formed one with missing fields.
var ErrUnparseable = errors.New("model response is not valid JSON")

// SchemaError reports a parsed response that does not satisfy the expected
// post schema. The whole response is rejected; fields are never patched.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid response schema: field %q %s", e.Field, e.Reason)
}

// postPayload is the validated content of a model response.
type postPayload struct {
	Title                   string
	Slug                    string
	Excerpt                 string
	MetaDescription         string
	Content                 string
	Bibliography            string
	InstagramCaption        string
	InstagramCarouselSlides []string
	FeaturedImageSuggestion string
}

// stringFields lists the required string fields in schema order.
var stringFields = []string{
	"title",
	"slug",
	"excerpt",
	"metaDescription",
	"content",
	"bibliography",
	"instagramCaption",
	"featuredImageSuggestion",
}

// parseResponse extracts a JSON object from the raw model output. Models
// sometimes wrap the JSON in prose or a code fence, so parsing falls back
// from a direct parse to a first-to-last-brace scan to a fenced block.
func parseResponse(raw string) (map[string]any, error) {
	if obj, err := decodeObject(raw); err == nil {
		return obj, nil
	}

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			if obj, err := decodeObject(raw[start : end+1]); err == nil {
				return obj, nil
			}
		}
	}

	if inner, ok := extractCodeFence(raw); ok {
		if obj, err := decodeObject(inner); err == nil {
			return obj, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnparseable, excerpt(raw, 200))
}

func decodeObject(s string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// extractCodeFence returns the contents of the first ``` block, tolerating
// an optional json language tag.
func extractCodeFence(raw string) (string, bool) {
	start := strings.Index(raw, "```")
	if start < 0 {
		return "", false
	}
	rest := strings.TrimPrefix(raw[start+3:], "json")
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// excerpt truncates s for inclusion in error messages.
func excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// validateResponse checks that the parsed object carries every required
// field with the right shape. The first offending field is reported.
func validateResponse(obj map[string]any) (*postPayload, error) {
	values := make(map[string]string, len(stringFields))
	for _, field := range stringFields {
		v, ok := obj[field]
		if !ok {
			return nil, &SchemaError{Field: field, Reason: "is missing"}
		}
		s, ok := v.(string)
		if !ok {
			return nil, &SchemaError{Field: field, Reason: "must be a string"}
		}
		if strings.TrimSpace(s) == "" {
			return nil, &SchemaError{Field: field, Reason: "must not be empty"}
		}
		values[field] = s
	}

	rawSlides, ok := obj["instagramCarouselSlides"]
	if !ok {
		return nil, &SchemaError{Field: "instagramCarouselSlides", Reason: "is missing"}
	}
	slideList, ok := rawSlides.([]any)
	if !ok {
		return nil, &SchemaError{Field: "instagramCarouselSlides", Reason: "must be an array of strings"}
	}
	if len(slideList) == 0 {
		return nil, &SchemaError{Field: "instagramCarouselSlides", Reason: "must not be empty"}
	}
	slides := make([]string, len(slideList))
	for i, v := range slideList {
		s, ok := v.(string)
		if !ok {
			return nil, &SchemaError{Field: "instagramCarouselSlides", Reason: "must be an array of strings"}
		}
		slides[i] = s
	}

	return &postPayload{
		Title:                   values["title"],
		Slug:                    values["slug"],
		Excerpt:                 values["excerpt"],
		MetaDescription:         values["metaDescription"],
		Content:                 values["content"],
		Bibliography:            values["bibliography"],
		InstagramCaption:        values["instagramCaption"],
		InstagramCarouselSlides: slides,
		FeaturedImageSuggestion: values["featuredImageSuggestion"],
	}, nil
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeSlug makes any string URL-safe: lower-cased, with runs of
// non-alphanumeric characters collapsed to a single hyphen and leading or
// trailing hyphens removed. Idempotent, and applied to every slug the model
// proposes.
func NormalizeSlug(s string) string {
	s = slugSeparators.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
