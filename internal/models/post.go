// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// ExcerptLength is the number of characters of content used when a post
	// has no explicit excerpt.
	ExcerptLength = 150

	// DefaultFeaturedImage is assigned to posts created without an image.
	DefaultFeaturedImage = "default-post.jpg"
)

// Post is the canonical content entity. Comments are owned by the post and
// only ever appended.
type Post struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt"`
	FeaturedImage string    `json:"featuredImage"`
	CategoryID    uuid.UUID `json:"categoryId"`
	Tags          Tags      `json:"tags"`
	IsPublished   bool      `json:"isPublished"`
	AuthorID      uuid.UUID `json:"authorId"`
	ViewCount     int64     `json:"viewCount"`
	Comments      []Comment `json:"comments"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Virtual fields populated by the service before serialization.
	Author   *UserSummary     `json:"author,omitempty"`
	Category *CategorySummary `json:"category,omitempty"`
}

// Comment is a single entry in a post's comment sequence.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	User *UserSummary `json:"user,omitempty"`
}

// DeriveExcerpt returns the leading ExcerptLength characters of content,
// or the whole content when it is shorter.
func DeriveExcerpt(content string) string {
	if utf8.RuneCountInString(content) <= ExcerptLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:ExcerptLength])
}

// Tags is an unordered set of labels. It is stored as a JSON array.
type Tags []string

// NormalizeTags trims every tag, drops empty ones and removes duplicates
// while keeping the first occurrence order. It never returns nil.
func NormalizeTags(in []string) Tags {
	out := make(Tags, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("tags: unsupported scan type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*t = out
	return nil
}

// PostDraft is the input for creating a post. Category accepts an id or slug.
type PostDraft struct {
	Title         string   `json:"title" validate:"notblank,max=200"`
	Content       string   `json:"content" validate:"notblank"`
	Excerpt       string   `json:"excerpt" validate:"max=500"`
	FeaturedImage string   `json:"featuredImage" validate:"max=500"`
	Category      string   `json:"category" validate:"notblank"`
	Tags          []string `json:"tags" validate:"max=50,dive,max=50"`
	IsPublished   bool     `json:"isPublished"`
}

// PostPatch is a partial update. A nil field means "not provided"; a non-nil
// field is applied even when empty.
type PostPatch struct {
	Title         *string   `json:"title" validate:"omitnil,max=200"`
	Content       *string   `json:"content"`
	Excerpt       *string   `json:"excerpt" validate:"omitnil,max=500"`
	FeaturedImage *string   `json:"featuredImage" validate:"omitnil,max=500"`
	Category      *string   `json:"category"`
	Tags          *[]string `json:"tags" validate:"omitnil,max=50,dive,max=50"`
	IsPublished   *bool     `json:"isPublished"`
}

// PostChanges is the resolved set of column updates a store applies
// atomically. Only non-nil fields are written; slug, author, view count and
// comments are never part of an update.
type PostChanges struct {
	Title         *string
	Content       *string
	Excerpt       *string
	FeaturedImage *string
	CategoryID    *uuid.UUID
	Tags          *Tags
	IsPublished   *bool
}

// Empty reports whether the change set touches no column.
func (c PostChanges) Empty() bool {
	return c.Title == nil && c.Content == nil && c.Excerpt == nil &&
		c.FeaturedImage == nil && c.CategoryID == nil && c.Tags == nil &&
		c.IsPublished == nil
}

// PostFilter selects published posts for listing.
type PostFilter struct {
	CategoryID *uuid.UUID
	Offset     int
	Limit      int
}
