package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const userColumns = "SELECT id, email, name, phone_number, password_hash, created_at FROM users"

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PhoneNumber, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// CreateUser implements storage.UserStore.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, phone_number, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.Name, user.PhoneNumber, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return nil
}

// GetUserByEmail implements storage.UserStore.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, userColumns+" WHERE lower(email) = lower($1)", email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetUserByID implements storage.UserStore.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, userColumns+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return u, nil
}

// ListUsers implements storage.UserStore.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.pool.Query(ctx, userColumns+" ORDER BY email")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	return users, nil
}

// CreateGroup implements storage.GroupStore.
func (s *PostgresStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = s.now()
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO groups (id, name, admin_user_id, created_at) VALUES ($1, $2, $3, $4)",
			group.ID, group.Name, group.AdminUserID, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", mapError(err))
		}

		rows := make([][]any, len(group.Members))
		for i, m := range group.Members {
			rows[i] = []any{group.ID, m, int32(i)}
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"group_members"},
			[]string{"group_id", "user_id", "position"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("failed to insert group members: %w", mapError(err))
		}
		return nil
	})
}

const groupQuery = `
	SELECT g.id, g.name, g.admin_user_id, g.created_at,
	       COALESCE(array_agg(m.user_id ORDER BY m.position) FILTER (WHERE m.user_id IS NOT NULL), '{}')
	FROM groups g
	LEFT JOIN group_members m ON m.group_id = g.id`

func scanGroup(row pgx.Row) (*models.Group, error) {
	g := &models.Group{}
	if err := row.Scan(&g.ID, &g.Name, &g.AdminUserID, &g.CreatedAt, &g.Members); err != nil {
		return nil, err
	}
	g.CreatedAt = g.CreatedAt.UTC()
	return g, nil
}

// GetGroup implements storage.GroupStore.
func (s *PostgresStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	g, err := scanGroup(s.pool.QueryRow(ctx, groupQuery+" WHERE g.id = $1 GROUP BY g.id", groupID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

// DeleteGroup implements storage.GroupStore.
func (s *PostgresStore) DeleteGroup(ctx context.Context, groupID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM groups WHERE id = $1", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}

// ListGroupsByMember implements storage.GroupStore.
func (s *PostgresStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.pool.Query(ctx, groupQuery+`
		WHERE g.id IN (SELECT group_id FROM group_members WHERE user_id = $1)
		GROUP BY g.id
		ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Group, error) {
		return scanGroup(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan groups: %w", err)
	}
	return groups, nil
}
