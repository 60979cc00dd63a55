package store

import (
	"context"
	"strings"
)

// User is a known account, mirrored from the external identity provider on login.
type User struct {
	ID int32

	// UID is the identity provider's stable user id.
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string

	CreatedTs int64
	UpdatedTs int64
}

type UpsertUser struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

type FindUser struct {
	ID    *int32
	UID   *string
	Email *string
}

// UpsertUser creates or refreshes the mirrored profile for a user.
// Emails are stored lowercased so that invite matching is case-insensitive.
func (s *Store) UpsertUser(ctx context.Context, upsert *UpsertUser) (*User, error) {
	upsert.Email = strings.ToLower(strings.TrimSpace(upsert.Email))
	user, err := s.driver.UpsertUser(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(user.UID, user)
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.UID != nil {
		if cached, ok := s.userCache.Get(*find.UID); ok {
			return cached.(*User), nil
		}
	}

	users, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}

	user := users[0]
	s.userCache.Set(user.UID, user)
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.GetUser(ctx, &FindUser{Email: &email})
}
