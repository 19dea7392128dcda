package profile

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/voyagevault/auth-api/internal/domain"
)

// ObjectStore uploads profile pictures and returns their public URL.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// UserStore is the account persistence the profile flow needs.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// UpdateInput carries the mutable profile fields. Empty strings and a nil
// Picture mean "leave unchanged".
type UpdateInput struct {
	UserID      string
	FirstName   string
	LastName    string
	Picture     io.Reader
	PictureName string
	ContentType string
}

type Service interface {
	Update(ctx context.Context, input UpdateInput) (*domain.User, error)
}

type service struct {
	store ObjectStore
	users UserStore
}

func NewService(store ObjectStore, users UserStore) Service {
	return &service{store: store, users: users}
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*domain.User, error) {
	updates := map[string]interface{}{}
	if input.FirstName != "" {
		updates["first_name"] = input.FirstName
	}
	if input.LastName != "" {
		updates["last_name"] = input.LastName
	}
	if input.Picture != nil {
		key := fmt.Sprintf("profile-pictures/%s/%s", input.UserID, sanitizeFilename(input.PictureName))
		url, err := s.store.Upload(ctx, key, input.Picture, input.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload profile picture: %w", domain.ErrUpstream)
		}
		updates["profile_picture"] = url
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("nothing to update: %w", domain.ErrBadRequest)
	}
	if err := s.users.Update(ctx, input.UserID, updates); err != nil {
		return nil, err
	}
	return s.users.Get(ctx, input.UserID)
}

// sanitizeFilename strips any path components and characters that are not
// safe in an object key.
func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
