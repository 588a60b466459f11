package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"example.com/miniter/internal/models"
)

// newSQLiteStore opens a fresh sqlite database with the migrations applied.
func newSQLiteStore(t *testing.T) StoreInterface {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	st, err := Open(DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("Open sqlite failed: %v", err)
	}
	t.Cleanup(st.Close)
	return st
}

func newMockStore(t *testing.T) StoreInterface {
	return NewMock()
}

var backends = map[string]func(t *testing.T) StoreInterface{
	"sqlite3": newSQLiteStore,
	"memory":  newMockStore,
}

func mustCreateUser(t *testing.T, st StoreInterface, name string) int64 {
	t.Helper()
	id, err := st.CreateUser(context.Background(), models.NewUser{
		Name:    name,
		Email:   name + "@gmail.com",
		Profile: "profile of " + name,
	}, "hashed-"+name)
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return id
}

func TestStore_CreateAndGetUser(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			st := newStore(t)
			ctx := context.Background()

			id := mustCreateUser(t, st, "hjseo")

			user, err := st.GetUser(ctx, id)
			if err != nil {
				t.Fatalf("GetUser failed: %v", err)
			}
			want := models.User{ID: id, Name: "hjseo", Email: "hjseo@gmail.com", Profile: "profile of hjseo"}
			if user != want {
				t.Fatalf("expected %+v, got %+v", want, user)
			}

			cred, err := st.GetCredentialByEmail(ctx, "hjseo@gmail.com")
			if err != nil {
				t.Fatalf("GetCredentialByEmail failed: %v", err)
			}
			if cred.ID != id || cred.HashedPassword != "hashed-hjseo" {
				t.Fatalf("unexpected credential: %+v", cred)
			}
		})
	}
}

func TestStore_DuplicateEmailConflict(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			st := newStore(t)
			mustCreateUser(t, st, "dwlee")

			_, err := st.CreateUser(context.Background(), models.NewUser{
				Name:  "other",
				Email: "dwlee@gmail.com",
			}, "x")
			if !errors.Is(err, models.ErrConflict) {
				t.Fatalf("expected ErrConflict, got %v", err)
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			st := newStore(t)
			ctx := context.Background()

			if _, err := st.GetUser(ctx, 999); !errors.Is(err, models.ErrNotFound) {
				t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
			}
			if _, err := st.GetCredentialByEmail(ctx, "nobody@x.com"); !errors.Is(err, models.ErrNotFound) {
				t.Fatalf("expected ErrNotFound for unknown email, got %v", err)
			}
		})
	}
}

func TestStore_FollowIsIdempotent(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			st := newStore(t)
			ctx := context.Background()
			a := mustCreateUser(t, st, "a")
			b := mustCreateUser(t, st, "b")
			c := mustCreateUser(t, st, "c")

			for i := 0; i < 2; i++ {
				if err := st.AddFollow(ctx, a, b); err != nil {
					t.Fatalf("AddFollow #%d failed: %v", i, err)
				}
			}
			if err := st.AddFollow(ctx, a, c); err != nil {
				t.Fatalf("AddFollow failed: %v", err)
			}

			got, err := st.ListFollowees(ctx, a)
			if err != nil {
				t.Fatalf("ListFollowees failed: %v", err)
			}
			if !reflect.DeepEqual(got, []int64{b, c}) {
				t.Fatalf("expected [%d %d], got %v", b, c, got)
			}
		})
	}
}

func TestStore_UnfollowRestoresState(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			st := newStore(t)
			ctx := context.Background()
			a := mustCreateUser(t, st, "a")
			b := mustCreateUser(t, st, "b")

			// removing an absent edge is a no-op
			if err := st.RemoveFollow(ctx, a, b); err != nil {
				t.Fatalf("RemoveFollow on absent edge failed: %v", err)
			}

			if err := st.AddFollow(ctx, a, b); err != nil {
				t.Fatalf("AddFollow failed: %v", err)
			}
			if err := st.RemoveFollow(ctx, a, b); err != nil {
				t.Fatalf("RemoveFollow failed: %v", err)
			}

			got, err := st.ListFollowees(ctx, a)
			if err != nil {
				t.Fatalf("ListFollowees failed: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("expected empty follow set, got %v", got)
			}
		})
	}
}

func TestStore_TimelineOrder(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			st := newStore(t)
			ctx := context.Background()
			a := mustCreateUser(t, st, "dwlee")
			b := mustCreateUser(t, st, "jmhan")
			c := mustCreateUser(t, st, "stranger")

			steps := []struct {
				user int64
				text string
			}{
				{b, "I love him."},
				{a, "tweet test"},
				{c, "not followed"},
				{b, "tweet test 2"},
			}
			for _, s := range steps {
				if err := st.InsertTweet(ctx, s.user, s.text); err != nil {
					t.Fatalf("InsertTweet failed: %v", err)
				}
			}

			own, err := st.GetTimeline(ctx, a)
			if err != nil {
				t.Fatalf("GetTimeline failed: %v", err)
			}
			if !reflect.DeepEqual(own, []models.TimelineEntry{{UserID: a, Tweet: "tweet test"}}) {
				t.Fatalf("expected only own tweets before follow, got %+v", own)
			}

			if err := st.AddFollow(ctx, a, b); err != nil {
				t.Fatalf("AddFollow failed: %v", err)
			}

			got, err := st.GetTimeline(ctx, a)
			if err != nil {
				t.Fatalf("GetTimeline failed: %v", err)
			}
			want := []models.TimelineEntry{
				{UserID: b, Tweet: "I love him."},
				{UserID: a, Tweet: "tweet test"},
				{UserID: b, Tweet: "tweet test 2"},
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("expected %+v, got %+v", want, got)
			}
		})
	}
}

func TestStore_EmptyTimelineIsNotNil(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			st := newStore(t)
			id := mustCreateUser(t, st, "quiet")

			got, err := st.GetTimeline(context.Background(), id)
			if err != nil {
				t.Fatalf("GetTimeline failed: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil timeline, got %#v", got)
			}
		})
	}
}

func TestOpen_ReappliesMigrationsIdempotently(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "twice.db") + "?_foreign_keys=on"

	first, err := Open(DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	first.Close()

	second, err := Open(DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	second.Close()
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestMockStoreFail(t *testing.T) {
	var st StoreInterface = &MockStoreFail{}
	if _, err := st.CreateUser(context.Background(), models.NewUser{}, ""); err == nil {
		t.Fatalf("expected error from MockStoreFail")
	}
	if _, err := st.GetTimeline(context.Background(), 1); err == nil {
		t.Fatalf("expected error from MockStoreFail")
	}
}
