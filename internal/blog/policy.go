package blog

import "inkwell/internal/models"

// CanMutatePost reports whether p may update or delete post: its author or
// any admin.
func CanMutatePost(p *models.Principal, post *models.Post) bool {
	if p == nil || post == nil {
		return false
	}
	return p.ID == post.AuthorID || p.IsAdmin()
}

// CanMutateCategory reports whether p may create, update or delete
// categories. Categories have no owner; only admins manage them.
func CanMutateCategory(p *models.Principal) bool {
	return p.IsAdmin()
}

func requirePrincipal(p *models.Principal) error {
	if p == nil {
		return newError(ErrUnauthenticated, "Authentication required")
	}
	return nil
}
