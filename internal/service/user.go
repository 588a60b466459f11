package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"example.com/miniter/internal/auth"
	"example.com/miniter/internal/broker"
	"example.com/miniter/internal/metrics"
	"example.com/miniter/internal/models"
	"example.com/miniter/internal/store"
)

// UserService covers accounts, tokens and the follow graph.
type UserService struct {
	store  store.UserStore
	tokens *auth.Tokens
	pub    broker.Publisher
}

func NewUserService(st store.UserStore, tokens *auth.Tokens, pub broker.Publisher) *UserService {
	if pub == nil {
		pub = broker.NopPublisher{}
	}
	return &UserService{store: st, tokens: tokens, pub: pub}
}

// SignUp validates the request, hashes the password and persists the user.
func (s *UserService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Name == "":
		return models.User{}, fmt.Errorf("name is required: %w", models.ErrValidation)
	case req.Email == "":
		return models.User{}, fmt.Errorf("email is required: %w", models.ErrValidation)
	case req.Password == "":
		return models.User{}, fmt.Errorf("password is required: %w", models.ErrValidation)
	case len(req.Password) > auth.MaxPasswordBytes:
		return models.User{}, fmt.Errorf("password exceeds %d bytes: %w", auth.MaxPasswordBytes, models.ErrValidation)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.NewUser{Name: req.Name, Email: req.Email, Profile: req.Profile}
	id, err := s.store.CreateUser(ctx, user, hashed)
	if err != nil {
		return models.User{}, err
	}

	metrics.SignUps.Inc()
	logg.Info("service/users", "User signed up with user_id="+strconv.FormatInt(id, 10))

	return models.User{ID: id, Name: user.Name, Email: user.Email, Profile: user.Profile}, nil
}

// Login checks the credentials and issues an access token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (models.AccessToken, error) {
	email = strings.TrimSpace(email)
	cred, err := s.store.GetCredentialByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return models.AccessToken{}, err
		}
		metrics.LoginAttempts.WithLabelValues("unknown_email").Inc()
		return models.AccessToken{}, fmt.Errorf("login failed: %w", models.ErrAuth)
	}

	if !auth.CheckPassword(cred.HashedPassword, password) {
		metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		return models.AccessToken{}, fmt.Errorf("login failed: %w", models.ErrAuth)
	}

	token, err := s.tokens.Issue(cred.ID)
	if err != nil {
		return models.AccessToken{}, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return models.AccessToken{Token: token, UserID: cred.ID}, nil
}

// ValidateToken returns the user id an access token was issued for.
func (s *UserService) ValidateToken(token string) (int64, error) {
	return s.tokens.Validate(token)
}

// Follow adds targetID to the follow set of userID. Following twice is a no-op.
func (s *UserService) Follow(ctx context.Context, userID, targetID int64) error {
	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.store.AddFollow(ctx, userID, targetID); err != nil {
		return err
	}
	publish(ctx, s.pub, models.EventUserFollowed, userID, targetID, "")
	return nil
}

// Unfollow removes the edge if present.
func (s *UserService) Unfollow(ctx context.Context, userID, targetID int64) error {
	if err := s.store.RemoveFollow(ctx, userID, targetID); err != nil {
		return err
	}
	publish(ctx, s.pub, models.EventUnfollowed, userID, targetID, "")
	return nil
}

// Followees lists the ids userID follows, ascending.
func (s *UserService) Followees(ctx context.Context, userID int64) ([]int64, error) {
	return s.store.ListFollowees(ctx, userID)
}
