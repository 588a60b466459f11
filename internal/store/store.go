package store

import (
	"context"

	"example.com/miniter/internal/models"
)

// --- Interfaces ---

// UserStore owns user records and the follow relation.
type UserStore interface {
	CreateUser(ctx context.Context, user models.NewUser, hashedPassword string) (int64, error)
	GetUser(ctx context.Context, userID int64) (models.User, error)
	GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error)
	AddFollow(ctx context.Context, userID, followeeID int64) error
	RemoveFollow(ctx context.Context, userID, followeeID int64) error
	ListFollowees(ctx context.Context, userID int64) ([]int64, error)
}

// TweetStore owns tweets and timeline assembly.
type TweetStore interface {
	InsertTweet(ctx context.Context, userID int64, text string) error
	GetTimeline(ctx context.Context, userID int64) ([]models.TimelineEntry, error)
}

type StoreInterface interface {
	UserStore
	TweetStore
	Ping(ctx context.Context) error
	Close()
}
