package auth

import (
	"context"
	"time"
)

// StoreAPI is the credential/session surface the HTTP auth handlers depend
// on, injected so the login and refresh flows can be tested against fakes.
type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	CreateSession(ctx context.Context, userID, refreshTokenHash string, expires time.Time) error
	RevokeSession(ctx context.Context, userID, refreshTokenHash string) error
	SessionUser(ctx context.Context, refreshTokenHash string) (AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	UserIDByEmail(ctx context.Context, email string) (string, error)
	CreatePasswordReset(ctx context.Context, userID, tokenHash string, expires time.Time) error
	PasswordResetUserID(ctx context.Context, tokenHash string) (string, error)
	UpdateUserPassword(ctx context.Context, userID, hash string) error
	MarkPasswordResetUsed(ctx context.Context, tokenHash string) error
}
