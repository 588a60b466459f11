package models

import "time"

// User is the public view of a user. The password hash never leaves the store.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Profile string `json:"profile"`
}

// NewUser holds the profile fields persisted on sign-up.
type NewUser struct {
	Name    string
	Email   string
	Profile string
}

// SignUpRequest is the body of POST /sign-up.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Profile  string `json:"profile"`
	Password string `json:"password"`
}

// Credential is what login needs to verify a password.
type Credential struct {
	ID             int64
	HashedPassword string
}

// AccessToken is returned by a successful login.
type AccessToken struct {
	Token  string `json:"access_token"`
	UserID int64  `json:"user_id"`
}

type TimelineEntry struct {
	UserID int64  `json:"user_id"`
	Tweet  string `json:"tweet"`
}

type Timeline struct {
	UserID   int64           `json:"user_id"`
	Timeline []TimelineEntry `json:"timeline"`
}

type FollowList struct {
	UserID int64   `json:"user_id"`
	Follow []int64 `json:"follow"`
}

// Event types published after successful writes.
const (
	EventTweetPosted  = "tweet_posted"
	EventUserFollowed = "user_followed"
	EventUnfollowed   = "user_unfollowed"
)

// Event is an activity record sent to the message broker.
type Event struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	UserID   int64     `json:"user_id"`
	TargetID int64     `json:"target_id,omitempty"`
	Tweet    string    `json:"tweet,omitempty"`
	Created  time.Time `json:"created"`
}
