package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"example.com/miniter/internal/models"
)

type mockUser struct {
	user           models.User
	hashedPassword string
}

// MockStore is an in-memory StoreInterface for tests and single-process runs.
// All maps are guarded by mu.
type MockStore struct {
	mu         sync.RWMutex
	Users      map[int64]mockUser
	Follows    map[int64]map[int64]struct{}
	Tweets     []mockTweet
	nextUserID int64
	ShouldFail bool // flag to simulate failures
}

type mockTweet struct {
	userID int64
	text   string
}

// NewMock initializes a new mock store
func NewMock() *MockStore {
	return &MockStore{
		Users:   make(map[int64]mockUser),
		Follows: make(map[int64]map[int64]struct{}),
	}
}

func (m *MockStore) Ping(ctx context.Context) error { return nil }

func (m *MockStore) Close() {}

// CreateUser simulates inserting a user with a unique email
func (m *MockStore) CreateUser(ctx context.Context, user models.NewUser, hashedPassword string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return 0, errors.New("mock: create user failed")
	}
	for _, u := range m.Users {
		if u.user.Email == user.Email {
			return 0, fmt.Errorf("email already registered: %w", models.ErrConflict)
		}
	}
	m.nextUserID++
	id := m.nextUserID
	m.Users[id] = mockUser{
		user: models.User{
			ID:      id,
			Name:    user.Name,
			Email:   user.Email,
			Profile: user.Profile,
		},
		hashedPassword: hashedPassword,
	}
	return id, nil
}

func (m *MockStore) GetUser(ctx context.Context, userID int64) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ShouldFail {
		return models.User{}, errors.New("mock: get user failed")
	}
	u, ok := m.Users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	return u.user, nil
}

func (m *MockStore) GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ShouldFail {
		return models.Credential{}, errors.New("mock: get credential failed")
	}
	for id, u := range m.Users {
		if u.user.Email == email {
			return models.Credential{ID: id, HashedPassword: u.hashedPassword}, nil
		}
	}
	return models.Credential{}, fmt.Errorf("credential: %w", models.ErrNotFound)
}

// AddFollow simulates an idempotent follow insert
func (m *MockStore) AddFollow(ctx context.Context, userID, followeeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mock: follow failed")
	}
	set, ok := m.Follows[userID]
	if !ok {
		set = make(map[int64]struct{})
		m.Follows[userID] = set
	}
	set[followeeID] = struct{}{}
	return nil
}

func (m *MockStore) RemoveFollow(ctx context.Context, userID, followeeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mock: unfollow failed")
	}
	delete(m.Follows[userID], followeeID)
	return nil
}

// ListFollowees returns the followees of a user in ascending order
func (m *MockStore) ListFollowees(ctx context.Context, userID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ShouldFail {
		return nil, errors.New("mock: list followees failed")
	}
	res := make([]int64, 0, len(m.Follows[userID]))
	for id := range m.Follows[userID] {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res, nil
}

// InsertTweet appends a tweet in insertion order
func (m *MockStore) InsertTweet(ctx context.Context, userID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mock: insert tweet failed")
	}
	m.Tweets = append(m.Tweets, mockTweet{userID: userID, text: text})
	return nil
}

// GetTimeline filters tweets by the user and their followees
func (m *MockStore) GetTimeline(ctx context.Context, userID int64) ([]models.TimelineEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ShouldFail {
		return nil, errors.New("mock: get timeline failed")
	}
	follows := m.Follows[userID]
	res := []models.TimelineEntry{}
	for _, t := range m.Tweets {
		if _, ok := follows[t.userID]; ok || t.userID == userID {
			res = append(res, models.TimelineEntry{UserID: t.userID, Tweet: t.text})
		}
	}
	return res, nil
}

// ---------------------------------------------
// MockStoreFail always returns errors for negative tests
type MockStoreFail struct{}

func (m *MockStoreFail) Ping(ctx context.Context) error {
	return errors.New("mock store ping failed")
}

func (m *MockStoreFail) Close() {}

func (m *MockStoreFail) CreateUser(ctx context.Context, user models.NewUser, hashedPassword string) (int64, error) {
	return 0, errors.New("mock store create user failed")
}

func (m *MockStoreFail) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return models.User{}, errors.New("mock store get user failed")
}

func (m *MockStoreFail) GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error) {
	return models.Credential{}, errors.New("mock store get credential failed")
}

func (m *MockStoreFail) AddFollow(ctx context.Context, userID, followeeID int64) error {
	return errors.New("mock store add follow failed")
}

func (m *MockStoreFail) RemoveFollow(ctx context.Context, userID, followeeID int64) error {
	return errors.New("mock store remove follow failed")
}

func (m *MockStoreFail) ListFollowees(ctx context.Context, userID int64) ([]int64, error) {
	return nil, errors.New("mock store list followees failed")
}

func (m *MockStoreFail) InsertTweet(ctx context.Context, userID int64, text string) error {
	return errors.New("mock store insert tweet failed")
}

func (m *MockStoreFail) GetTimeline(ctx context.Context, userID int64) ([]models.TimelineEntry, error) {
	return nil, errors.New("mock store get timeline failed")
}
