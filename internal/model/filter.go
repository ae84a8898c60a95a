package model

import (
	"fmt"
	"sort"
	"strings"
)

// Category is one downloadable kind of post content. A run is parameterized
// by a set of categories; the cache records which ones are done per post.
type Category string

const (
	CategoryPostContent    Category = "post_content"
	CategoryFiles          Category = "files"
	CategoryBoostyVideos   Category = "boosty_videos"
	CategoryExternalVideos Category = "external_videos"
	CategoryAudio          Category = "audio"
)

// AllCategories lists every category in a stable order.
var AllCategories = []Category{
	CategoryPostContent,
	CategoryFiles,
	CategoryBoostyVideos,
	CategoryExternalVideos,
	CategoryAudio,
}

// ParseCategory validates a user-supplied category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(strings.ToLower(s)))
	for _, known := range AllCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown content type filter %q (valid: %s)", s, joinCategories(AllCategories))
}

func joinCategories(cats []Category) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// CategorySet is a set of filter categories.
type CategorySet map[Category]struct{}

// NewCategorySet builds a set from the given categories.
func NewCategorySet(cats ...Category) CategorySet {
	set := make(CategorySet, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether c is in the set.
func (s CategorySet) Has(c Category) bool {
	_, ok := s[c]
	return ok
}

// Add inserts c into the set.
func (s CategorySet) Add(c Category) {
	s[c] = struct{}{}
}

// Clone returns an independent copy.
func (s CategorySet) Clone() CategorySet {
	out := make(CategorySet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Subtract returns s − other.
func (s CategorySet) Subtract(other CategorySet) CategorySet {
	out := make(CategorySet)
	for c := range s {
		if !other.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// Union returns s ∪ other.
func (s CategorySet) Union(other CategorySet) CategorySet {
	out := s.Clone()
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same categories.
func (s CategorySet) Equal(other CategorySet) bool {
	if len(s) != len(other) {
		return false
	}
	for c := range s {
		if !other.Has(c) {
			return false
		}
	}
	return true
}

// Sorted returns the members in stable order.
func (s CategorySet) Sorted() []Category {
	out := make([]Category, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the set as a comma-separated list, the form stored in the
// cache database.
func (s CategorySet) String() string {
	return joinCategories(s.Sorted())
}

// ParseCategorySet parses the comma-separated form written by String.
// Unknown names are rejected so a schema-drifted cache row surfaces loudly.
func ParseCategorySet(s string) (CategorySet, error) {
	set := make(CategorySet)
	if strings.TrimSpace(s) == "" {
		return set, nil
	}
	for _, part := range strings.Split(s, ",") {
		c, err := ParseCategory(part)
		if err != nil {
			return nil, err
		}
		set[c] = struct{}{}
	}
	return set, nil
}
