package posts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrSlugRequired = errors.New("posts: slug is required")
	ErrSlugInvalid  = errors.New("posts: slug contains no usable characters")
	ErrSlugExists   = errors.New("posts: slug already exists")
	ErrIDRequired   = errors.New("posts: post id required")
)

// Repository persists posts. Reads exclude soft-deleted posts unless noted.
type Repository interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	Update(ctx context.Context, post *Post) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	// GetWithDeleted includes soft-deleted posts.
	GetWithDeleted(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ForceDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
}

// NotFoundError represents missing posts.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func notFound(key string) error {
	return &NotFoundError{Resource: "post", Key: key}
}
