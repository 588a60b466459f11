package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"example.com/miniter/internal/broker"
	"example.com/miniter/internal/metrics"
	"example.com/miniter/internal/models"
	"example.com/miniter/internal/store"
)

// MaxTweetLength is counted in code points, not bytes.
const MaxTweetLength = 300

// tweetStore is what the tweet service needs from persistence.
type tweetStore interface {
	store.TweetStore
	GetUser(ctx context.Context, userID int64) (models.User, error)
}

// TweetService posts tweets and assembles timelines.
type TweetService struct {
	store tweetStore
	pub   broker.Publisher
}

func NewTweetService(st tweetStore, pub broker.Publisher) *TweetService {
	if pub == nil {
		pub = broker.NopPublisher{}
	}
	return &TweetService{store: st, pub: pub}
}

// PostTweet stores text for userID. Nothing is written when the text is too long.
func (s *TweetService) PostTweet(ctx context.Context, userID int64, text string) error {
	if utf8.RuneCountInString(text) > MaxTweetLength {
		return fmt.Errorf("exceed %d characters: %w", MaxTweetLength, models.ErrValidation)
	}

	if err := s.store.InsertTweet(ctx, userID, text); err != nil {
		return err
	}

	metrics.TweetsPosted.Inc()
	publish(ctx, s.pub, models.EventTweetPosted, userID, 0, text)
	return nil
}

// Timeline returns tweets by userID and everyone they follow, oldest first.
func (s *TweetService) Timeline(ctx context.Context, userID int64) ([]models.TimelineEntry, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	entries, err := s.store.GetTimeline(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.TimelineEntry{}
	}
	return entries, nil
}
