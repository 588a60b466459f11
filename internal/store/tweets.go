package store

import (
	"context"
	"fmt"

	"example.com/miniter/internal/models"
)

// --- Tweet operations ---

// InsertTweet stores a tweet. Length is checked by the caller.
func (s *Store) InsertTweet(ctx context.Context, userID int64, text string) error {
	if _, err := s.DB.ExecContext(ctx, `
		INSERT INTO tweets (user_id, tweet)
		VALUES ($1, $2)`,
		userID, text,
	); err != nil {
		logg.Error("store", "Failed to add tweet", err)
		return err
	}

	logg.Info("store", "Tweet added (content anonymized)")
	return nil
}

// GetTimeline returns the user's own tweets merged with the tweets of everyone
// they follow, in insertion order.
func (s *Store) GetTimeline(ctx context.Context, userID int64) ([]models.TimelineEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT t.user_id, t.tweet
		FROM tweets t
		WHERE t.user_id = $1
		   OR t.user_id IN (
				SELECT ufl.follow_user_id
				FROM users_follow_list ufl
				WHERE ufl.user_id = $1
		   )
		ORDER BY t.id`,
		userID,
	)
	if err != nil {
		logg.Error("store", "Failed to retrieve timeline", err)
		return nil, err
	}
	defer rows.Close()

	res := []models.TimelineEntry{}
	for rows.Next() {
		var e models.TimelineEntry
		if err := rows.Scan(&e.UserID, &e.Tweet); err != nil {
			return nil, fmt.Errorf("failed to scan tweet: %w", err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		logg.Error("store", "Failed to retrieve timeline", err)
		return nil, err
	}

	logg.Debug("store", "Timeline retrieved successfully (IDs and content anonymized)")
	return res, nil
}
