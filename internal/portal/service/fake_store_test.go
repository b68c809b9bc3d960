package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/supportportal/portal/internal/portal/domain"
	"github.com/supportportal/portal/internal/portal/store"
)

// fakeStore is an in-memory store.Store for service tests. Transactions are
// simulated: fn runs directly against the shared map and errors roll nothing
// back, which is fine for tests that only assert on success paths.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]domain.User // keyed by ID
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]domain.User)}
}

func (f *fakeStore) Users() store.Users     { return &fakeUsers{f: f} }
func (f *fakeStore) ApplyMigrations() error { return nil }
func (f *fakeStore) Close() error           { return nil }

func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func (f *fakeStore) Tx(ctx context.Context) (store.Tx, error) {
	return &fakeTx{fakeStore: f}, nil
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return fn(&fakeTx{fakeStore: f})
}

type fakeTx struct {
	*fakeStore
}

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }

type fakeUsers struct {
	f *fakeStore
}

func (u *fakeUsers) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u.f.mu.Lock()
	defer u.f.mu.Unlock()

	user, ok := u.f.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return user, nil
}

func (u *fakeUsers) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	u.f.mu.Lock()
	defer u.f.mu.Unlock()

	for _, user := range u.f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (u *fakeUsers) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u.f.mu.Lock()
	defer u.f.mu.Unlock()

	for _, user := range u.f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (u *fakeUsers) ListUsers(ctx context.Context) ([]domain.User, error) {
	u.f.mu.Lock()
	defer u.f.mu.Unlock()

	users := make([]domain.User, 0, len(u.f.users))
	for _, user := range u.f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (u *fakeUsers) CreateUser(ctx context.Context, user domain.User) error {
	u.f.mu.Lock()
	defer u.f.mu.Unlock()

	for _, existing := range u.f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return store.ErrAlreadyExists
		}
	}
	u.f.users[user.ID] = user
	return nil
}

func (u *fakeUsers) UpdateUser(ctx context.Context, user domain.User) error {
	u.f.mu.Lock()
	defer u.f.mu.Unlock()

	if _, ok := u.f.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	u.f.users[user.ID] = user
	return nil
}

func (u *fakeUsers) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return u.mutate(userID, func(user *domain.User) { user.PasswordHash = newHash })
}

func (u *fakeUsers) SetLocked(ctx context.Context, userID string, locked bool) error {
	return u.mutate(userID, func(user *domain.User) { user.Locked = locked })
}

func (u *fakeUsers) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	return u.mutate(userID, func(user *domain.User) {
		user.LastLoginShown = user.LastLoginAt
		user.LastLoginAt = &at
	})
}

func (u *fakeUsers) UpdateProfileImageURL(ctx context.Context, userID, url string) error {
	return u.mutate(userID, func(user *domain.User) { user.ProfileImageURL = url })
}

func (u *fakeUsers) DeleteUser(ctx context.Context, userID string) error {
	u.f.mu.Lock()
	defer u.f.mu.Unlock()

	if _, ok := u.f.users[userID]; !ok {
		return store.ErrNotFound
	}
	delete(u.f.users, userID)
	return nil
}

func (u *fakeUsers) mutate(userID string, fn func(*domain.User)) error {
	u.f.mu.Lock()
	defer u.f.mu.Unlock()

	user, ok := u.f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	fn(&user)
	u.f.users[userID] = user
	return nil
}
