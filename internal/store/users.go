package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"example.com/miniter/internal/models"
)

// --- User operations ---

// CreateUser inserts a user and returns the id assigned by the database.
// A duplicate email yields models.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user models.NewUser, hashedPassword string) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO users (name, email, profile, hashed_password)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		user.Name, user.Email, user.Profile, hashedPassword,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("email already registered: %w", models.ErrConflict)
		}
		logg.Error("store", "Failed to create user", err)
		return 0, err
	}

	logg.Info("store", fmt.Sprintf("User created successfully with user_id=%d", id))
	return id, nil
}

// GetUser returns the public view of a user.
func (s *Store) GetUser(ctx context.Context, userID int64) (models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, email, profile
		FROM users WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Profile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
		}
		logg.Error("store", "Failed to query user", err)
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error) {
	var c models.Credential
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, hashed_password
		FROM users WHERE email = $1`,
		email,
	).Scan(&c.ID, &c.HashedPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Credential{}, fmt.Errorf("credential: %w", models.ErrNotFound)
		}
		logg.Error("store", "Failed to query credential by email", err)
		return models.Credential{}, err
	}
	return c, nil
}

// --- Follow operations ---

// AddFollow inserts the edge userID -> followeeID. Repeating it is a no-op.
func (s *Store) AddFollow(ctx context.Context, userID, followeeID int64) error {
	if _, err := s.DB.ExecContext(ctx, `
		INSERT INTO users_follow_list (user_id, follow_user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, follow_user_id) DO NOTHING`,
		userID, followeeID,
	); err != nil {
		logg.Error("store", "Failed to create follow relationship", err)
		return err
	}

	logg.Info("store", "Follow relationship created (user IDs anonymized)")
	return nil
}

// RemoveFollow deletes the edge if present.
func (s *Store) RemoveFollow(ctx context.Context, userID, followeeID int64) error {
	if _, err := s.DB.ExecContext(ctx, `
		DELETE FROM users_follow_list
		WHERE user_id = $1 AND follow_user_id = $2`,
		userID, followeeID,
	); err != nil {
		logg.Error("store", "Failed to remove follow relationship", err)
		return err
	}

	logg.Info("store", "Follow relationship removed (user IDs anonymized)")
	return nil
}

func (s *Store) ListFollowees(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT follow_user_id FROM users_follow_list
		WHERE user_id = $1
		ORDER BY follow_user_id`,
		userID,
	)
	if err != nil {
		logg.Error("store", "Failed to list followees", err)
		return nil, err
	}
	defer rows.Close()

	res := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan followee: %w", err)
		}
		res = append(res, id)
	}
	if err := rows.Err(); err != nil {
		logg.Error("store", "Failed to list followees", err)
		return nil, err
	}
	return res, nil
}
