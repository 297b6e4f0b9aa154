package account

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Repository is the credential store the authenticator runs against.
type Repository interface {
	Create(ctx context.Context, a *Account) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	RecordFailure(ctx context.Context, id int64, at time.Time, threshold int) (int, bool, error)
	ResetFailures(ctx context.Context, id int64) error
}

// TokenIssuer mints a signed session token for a subject.
type TokenIssuer interface {
	Issue(subject int64, ttl time.Duration) (string, time.Time, error)
}

// Service orchestrates registration and login with account lockout.
type Service struct {
	repo       Repository
	tokens     TokenIssuer
	sessionTTL time.Duration
	maxFails   int
	lockWindow time.Duration
	now        func() time.Time
}

// NewService creates an authenticator. maxFails failures lock the account;
// the lock clears by itself lockWindow after the last failure.
func NewService(repo Repository, tokens TokenIssuer, sessionTTL time.Duration, maxFails int, lockWindow time.Duration) *Service {
	if maxFails <= 0 {
		maxFails = 5
	}
	if lockWindow <= 0 {
		lockWindow = 15 * time.Minute
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		maxFails:   maxFails,
		lockWindow: lockWindow,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a new account with a hashed password and a clean lockout state.
func (s *Service) Register(ctx context.Context, username, password, role, name, studentID, section string) (*Account, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password required")
	}
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Name:         name,
		StudentID:    studentID,
		Section:      section,
	}
	return s.repo.Create(ctx, a)
}

// Login verifies credentials under the lockout policy and issues a session
// token on success. Lockout state is persisted before the call returns, on
// failures as well, so repeated guesses are throttled.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Account, error) {
	acct, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	if acct.Locked {
		if acct.LastFailedAt != nil && now.Sub(*acct.LastFailedAt) < s.lockWindow {
			return "", nil, ErrLocked
		}
		// Lock window elapsed: clear state and let the attempt proceed.
		if err := s.repo.ResetFailures(ctx, acct.ID); err != nil {
			return "", nil, err
		}
		acct.Locked = false
		acct.FailedAttempts = 0
		acct.LastFailedAt = nil
	}

	if !checkPasswordHash(password, acct.PasswordHash) {
		if _, _, err := s.repo.RecordFailure(ctx, acct.ID, now, s.maxFails); err != nil {
			return "", nil, err
		}
		return "", nil, ErrInvalidCredentials
	}

	if err := s.repo.ResetFailures(ctx, acct.ID); err != nil {
		return "", nil, err
	}

	token, _, err := s.tokens.Issue(acct.ID, s.sessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue session token: %w", err)
	}
	return token, acct, nil
}
