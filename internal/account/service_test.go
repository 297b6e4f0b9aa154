package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	nextID   int64
	accounts map[int64]*Account
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, accounts: make(map[int64]*Account)}
}

func (m *memRepo) Create(_ context.Context, a *Account) (*Account, error) {
	for _, existing := range m.accounts {
		if existing.Username == a.Username {
			return nil, ErrDuplicateUsername
		}
	}
	a.ID = m.nextID
	m.nextID++
	cp := *a
	m.accounts[a.ID] = &cp
	return a, nil
}

func (m *memRepo) GetByUsername(_ context.Context, username string) (*Account, error) {
	for _, a := range m.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Account, error) {
	if a, ok := m.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memRepo) RecordFailure(_ context.Context, id int64, at time.Time, threshold int) (int, bool, error) {
	a, ok := m.accounts[id]
	if !ok {
		return 0, false, ErrNotFound
	}
	a.FailedAttempts++
	a.LastFailedAt = &at
	if a.FailedAttempts >= threshold {
		a.Locked = true
	}
	return a.FailedAttempts, a.Locked, nil
}

func (m *memRepo) ResetFailures(_ context.Context, id int64) error {
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.FailedAttempts = 0
	a.LastFailedAt = nil
	a.Locked = false
	return nil
}

type staticIssuer struct{}

func (staticIssuer) Issue(int64, time.Duration) (string, time.Time, error) {
	return "session-token", time.Now().Add(24 * time.Hour), nil
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc := NewService(repo, staticIssuer{}, 24*time.Hour, 5, 15*time.Minute)
	_, err := svc.Register(context.Background(), "alice", "hunter22", RoleStudent, "Alice", "S-1", "A1")
	require.NoError(t, err)
	return svc, repo
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "alice", "other", RoleStudent, "Alice 2", "", "")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegisterInvalidRole(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "bob", "pw", "Admin", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.Login(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newTestService(t)
	token, acct, err := svc.Login(context.Background(), "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	assert.Equal(t, RoleStudent, acct.Role)
	assert.Equal(t, "A1", acct.Section)
}

func TestLoginWrongPasswordCountsFailure(t *testing.T) {
	svc, repo := newTestService(t)
	_, _, err := svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	acct := repo.accounts[1]
	assert.Equal(t, 1, acct.FailedAttempts)
	assert.NotNil(t, acct.LastFailedAt)
	assert.False(t, acct.Locked)
}

func TestFifthFailureLocksAccount(t *testing.T) {
	svc, repo := newTestService(t)
	for i := 0; i < 5; i++ {
		_, _, err := svc.Login(context.Background(), "alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.True(t, repo.accounts[1].Locked)
	assert.Equal(t, 5, repo.accounts[1].FailedAttempts)

	// Even the correct password is rejected inside the lock window.
	_, _, err := svc.Login(context.Background(), "alice", "hunter22")
	assert.ErrorIs(t, err, ErrLocked)
}

func TestLockClearsAfterWindow(t *testing.T) {
	svc, repo := newTestService(t)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	for i := 0; i < 5; i++ {
		_, _, _ = svc.Login(context.Background(), "alice", "wrong")
	}
	require.True(t, repo.accounts[1].Locked)

	// 14m59s after the last failure: still locked.
	svc.now = func() time.Time { return base.Add(15*time.Minute - time.Second) }
	_, _, err := svc.Login(context.Background(), "alice", "hunter22")
	assert.ErrorIs(t, err, ErrLocked)

	// Exactly 15m: lock clears and the correct password logs in.
	svc.now = func() time.Time { return base.Add(15 * time.Minute) }
	token, _, err := svc.Login(context.Background(), "alice", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 0, repo.accounts[1].FailedAttempts)
	assert.False(t, repo.accounts[1].Locked)
	assert.Nil(t, repo.accounts[1].LastFailedAt)
}

func TestLockClearsThenWrongPasswordCountsFromZero(t *testing.T) {
	svc, repo := newTestService(t)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	for i := 0; i < 5; i++ {
		_, _, _ = svc.Login(context.Background(), "alice", "wrong")
	}

	svc.now = func() time.Time { return base.Add(16 * time.Minute) }
	_, _, err := svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, repo.accounts[1].FailedAttempts)
	assert.False(t, repo.accounts[1].Locked)
}

func TestSuccessfulLoginResetsCounter(t *testing.T) {
	svc, repo := newTestService(t)
	for i := 0; i < 3; i++ {
		_, _, _ = svc.Login(context.Background(), "alice", "wrong")
	}
	require.Equal(t, 3, repo.accounts[1].FailedAttempts)

	_, _, err := svc.Login(context.Background(), "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, 0, repo.accounts[1].FailedAttempts)
	assert.Nil(t, repo.accounts[1].LastFailedAt)
}
