package mongostore

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Identifiers are stored as their canonical string form so documents stay
// readable in the shell and _id lookups need no custom codec.

type userDoc struct {
	ID            string    `bson:"_id"`
	Username      string    `bson:"username"`
	UsernameLower string    `bson:"username_lower"`
	Email         string    `bson:"email"`
	EmailLower    string    `bson:"email_lower"`
	Name          string    `bson:"name"`
	Bio           string    `bson:"bio"`
	ProfileImage  string    `bson:"profile_image"`
	Role          string    `bson:"role"`
	IsActive      bool      `bson:"is_active"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

type categoryDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Slug        string    `bson:"slug"`
	Description string    `bson:"description"`
	Image       string    `bson:"image"`
	IsActive    bool      `bson:"is_active"`
	ParentID    *string   `bson:"parent_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type commentDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

type postDoc struct {
	ID            string       `bson:"_id"`
	Title         string       `bson:"title"`
	Slug          string       `bson:"slug"`
	Content       string       `bson:"content"`
	Excerpt       string       `bson:"excerpt"`
	FeaturedImage string       `bson:"featured_image"`
	CategoryID    string       `bson:"category_id"`
	Tags          []string     `bson:"tags"`
	IsPublished   bool         `bson:"is_published"`
	AuthorID      string       `bson:"author_id"`
	ViewCount     int64        `bson:"view_count"`
	Comments      []commentDoc `bson:"comments"`
	CreatedAt     time.Time    `bson:"created_at"`
	UpdatedAt     time.Time    `bson:"updated_at"`
}

func newUserDoc(u *models.User) userDoc {
	return userDoc{
		ID:            u.ID.String(),
		Username:      u.Username,
		UsernameLower: strings.ToLower(u.Username),
		Email:         u.Email,
		EmailLower:    strings.ToLower(u.Email),
		Name:          u.Name,
		Bio:           u.Bio,
		ProfileImage:  u.ProfileImage,
		Role:          string(u.Role),
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d userDoc) model() (*models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", d.ID, err)
	}
	return &models.User{
		ID:           id,
		Username:     d.Username,
		Email:        d.Email,
		Name:         d.Name,
		Bio:          d.Bio,
		ProfileImage: d.ProfileImage,
		Role:         models.Role(d.Role),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func newCategoryDoc(c *models.Category) categoryDoc {
	return categoryDoc{
		ID:          c.ID.String(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       c.Image,
		IsActive:    c.IsActive,
		ParentID:    idString(c.ParentID),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (d categoryDoc) model() (*models.Category, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", d.ID, err)
	}
	c := &models.Category{
		ID:          id,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Image:       d.Image,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.ParentID != nil {
		parent, err := uuid.Parse(*d.ParentID)
		if err != nil {
			return nil, fmt.Errorf("category %q parent: %w", d.ID, err)
		}
		c.ParentID = &parent
	}
	return c, nil
}

func newPostDoc(p *models.Post) postDoc {
	tags := []string(models.NormalizeTags(p.Tags))
	return postDoc{
		ID:            p.ID.String(),
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		CategoryID:    p.CategoryID.String(),
		Tags:          tags,
		IsPublished:   p.IsPublished,
		AuthorID:      p.AuthorID.String(),
		ViewCount:     p.ViewCount,
		Comments:      []commentDoc{},
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (d postDoc) model() (*models.Post, error) {
	var ids [3]uuid.UUID
	for i, s := range []string{d.ID, d.CategoryID, d.AuthorID} {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("post %q: %w", d.ID, err)
		}
		ids[i] = id
	}

	comments := make([]models.Comment, 0, len(d.Comments))
	for _, c := range d.Comments {
		cid, err := uuid.Parse(c.ID)
		if err != nil {
			return nil, fmt.Errorf("post %q comment: %w", d.ID, err)
		}
		uid, err := uuid.Parse(c.UserID)
		if err != nil {
			return nil, fmt.Errorf("post %q comment user: %w", d.ID, err)
		}
		comments = append(comments, models.Comment{ID: cid, UserID: uid, Content: c.Content, CreatedAt: c.CreatedAt})
	}

	tags := models.Tags(d.Tags)
	if tags == nil {
		tags = models.Tags{}
	}
	return &models.Post{
		ID:            ids[0],
		Title:         d.Title,
		Slug:          d.Slug,
		Content:       d.Content,
		Excerpt:       d.Excerpt,
		FeaturedImage: d.FeaturedImage,
		CategoryID:    ids[1],
		Tags:          tags,
		IsPublished:   d.IsPublished,
		AuthorID:      ids[2],
		ViewCount:     d.ViewCount,
		Comments:      comments,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
