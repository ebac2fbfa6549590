// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryImage is assigned to categories created without an image.
const DefaultCategoryImage = "default-category.jpg"

// Category groups posts. Categories form an optional tree through ParentID.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	IsActive    bool       `json:"isActive"`
	ParentID    *uuid.UUID `json:"parentCategory"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Virtual field populated before serialization.
	URL string `json:"url"`
}

// Summary returns the projection embedded in post payloads.
func (c *Category) Summary() *CategorySummary {
	return &CategorySummary{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

// CategoryURL returns the public path of a category.
func CategoryURL(slug string) string {
	return "/categories/" + slug
}

// CategorySummary is the category projection shown alongside posts.
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// CategoryDraft is the input for creating a category.
type CategoryDraft struct {
	Name           string `json:"name" validate:"notblank,max=50"`
	Description    string `json:"description" validate:"max=500"`
	Image          string `json:"image" validate:"max=500"`
	ParentCategory string `json:"parentCategory"`
}

// CategoryPatch is a partial update. Nil fields are left unchanged; an empty
// ParentCategory clears the parent link.
type CategoryPatch struct {
	Name           *string `json:"name" validate:"omitnil,max=50"`
	Description    *string `json:"description" validate:"omitnil,max=500"`
	Image          *string `json:"image" validate:"omitnil,max=500"`
	ParentCategory *string `json:"parentCategory"`
	IsActive       *bool   `json:"isActive"`
}

// CategoryChanges is the resolved set of column updates a store applies
// atomically. Only non-nil fields are written.
type CategoryChanges struct {
	Name        *string
	Slug        *string
	Description *string
	Image       *string
	ParentID    **uuid.UUID
	IsActive    *bool
}
