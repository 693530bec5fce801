package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateUser implements storage.UserStore.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("email %s: %w", user.Email, storage.ErrConflict)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	u := *user
	s.users[u.ID] = &u
	return nil
}

// GetUserByEmail implements storage.UserStore.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
}

// GetUserByID implements storage.UserStore.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	out := *u
	return &out, nil
}

// ListUsers implements storage.UserStore.
func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// CreateGroup implements storage.GroupStore.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = s.now()
	}
	if _, exists := s.groups[group.ID]; exists {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrConflict)
	}
	g := *group
	g.Members = append([]string(nil), group.Members...)
	s.groups[g.ID] = &g
	return nil
}

// GetGroup implements storage.GroupStore.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	out := *g
	out.Members = append([]string(nil), g.Members...)
	return &out, nil
}

// DeleteGroup implements storage.GroupStore.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	delete(s.groups, groupID)
	return nil
}

// ListGroupsByMember implements storage.GroupStore.
func (s *Store) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Group
	for _, g := range s.groups {
		if g.HasMember(userID) {
			c := *g
			c.Members = append([]string(nil), g.Members...)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
