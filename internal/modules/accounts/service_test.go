package accounts

import (
	"context"
	"testing"
	"time"

	"tunebox/internal/database"
	"tunebox/internal/domain"
	"tunebox/internal/pkg/token"
	"tunebox/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "service-test-secret"

type serviceFixture struct {
	service  *Service
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	codec    *token.Codec
}

func setupService(t *testing.T) *serviceFixture {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, repository.AutoMigrate(db))

	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	codec := token.NewCodec(testSecret, 30*time.Minute, 24*time.Hour)

	return &serviceFixture{
		service:  NewService(users, sessions, codec),
		users:    users,
		sessions: sessions,
		codec:    codec,
	}
}

func registerAlice(t *testing.T, f *serviceFixture) (*domain.User, *TokenPair) {
	t.Helper()
	user, pair, err := f.service.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw123",
	})
	require.NoError(t, err)
	return user, pair
}

func TestService_Register_Success(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	user, pair := registerAlice(t, f)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotZero(t, user.ID)
	require.NotEmpty(t, pair.Refresh)
	require.NotEmpty(t, pair.Access)

	claims, err := f.codec.DecodeAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	// the refresh token is persisted as a session bound to the new user
	sess, err := f.sessions.GetByToken(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.True(t, sess.Live(time.Now()))
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	registerAlice(t, f)

	_, _, err := f.service.Register(ctx, RegisterRequest{
		Username: "alice",
		Email:    "other@x.com",
		Password: "pw123",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// no partial rows: the second email must not have been persisted
	exists, err := f.users.ExistsByEmail(ctx, "other@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	registerAlice(t, f)

	_, _, err := f.service.Register(ctx, RegisterRequest{
		Username: "bob",
		Email:    "a@x.com",
		Password: "pw123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	exists, err := f.users.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestService_Login(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	registerAlice(t, f)

	t.Run("unknown username", func(t *testing.T) {
		_, _, err := f.service.Login(ctx, LoginRequest{Username: "nobody", Password: "pw123"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := f.service.Login(ctx, LoginRequest{Username: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success issues a fresh session", func(t *testing.T) {
		user, pair, err := f.service.Login(ctx, LoginRequest{Username: "alice", Password: "pw123"})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Empty(t, user.PasswordHash)

		claims, err := f.codec.DecodeAccess(pair.Access)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)

		sess, err := f.sessions.GetByToken(ctx, pair.Refresh)
		require.NoError(t, err)
		assert.Equal(t, user.ID, sess.UserID)
	})
}

func TestService_ConcurrentLoginsCoexist(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	user, _ := registerAlice(t, f)

	// second and third login must not disturb existing sessions
	_, _, err := f.service.Login(ctx, LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	_, _, err = f.service.Login(ctx, LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	sessions, err := f.sessions.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
}

func TestService_Refresh_HappyPath(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, pair := registerAlice(t, f)

	access, err := f.service.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Access, access)

	claims, err := f.codec.DecodeAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	// refreshing does not consume the session
	_, err = f.sessions.GetByToken(ctx, pair.Refresh)
	assert.NoError(t, err)
}

func TestService_Refresh_InvalidToken(t *testing.T) {
	f := setupService(t)

	_, err := f.service.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func TestService_Refresh_AccessTokenRejected(t *testing.T) {
	f := setupService(t)

	_, pair := registerAlice(t, f)

	_, err := f.service.Refresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func TestService_Refresh_ExpiredDeletesSession(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	user, _ := registerAlice(t, f)

	// mint an already-expired refresh token with the same secret and
	// persist its session row, as if it had aged out naturally
	staleCodec := token.NewCodec(testSecret, 30*time.Minute, -time.Minute)
	stale, expiresAt, err := staleCodec.EncodeRefresh(user.ID)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Create(ctx, &domain.Session{
		Token:     stale,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}))

	_, err = f.service.Refresh(ctx, stale)
	assert.ErrorIs(t, err, token.ErrExpired)

	// lazy cleanup removed the row
	_, err = f.sessions.GetByToken(ctx, stale)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// presenting it again still fails, now without a row to delete
	_, err = f.service.Refresh(ctx, stale)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestService_Refresh_AfterLogoutIsRevoked(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	user, pair := registerAlice(t, f)

	require.NoError(t, f.service.Logout(ctx, user))

	_, err := f.service.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestService_CurrentUser(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	user, pair := registerAlice(t, f)

	t.Run("valid token resolves the user", func(t *testing.T) {
		got, err := f.service.CurrentUser(ctx, pair.Access)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "alice", got.Username)
		assert.Empty(t, got.PasswordHash)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := f.service.CurrentUser(ctx, "garbage")
		assert.ErrorIs(t, err, token.ErrInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		staleCodec := token.NewCodec(testSecret, -time.Minute, 24*time.Hour)
		stale, err := staleCodec.EncodeAccess("alice")
		require.NoError(t, err)

		_, err = f.service.CurrentUser(ctx, stale)
		assert.ErrorIs(t, err, token.ErrExpired)
	})

	t.Run("after logout the user counts as revoked", func(t *testing.T) {
		require.NoError(t, f.service.Logout(ctx, user))

		_, err := f.service.CurrentUser(ctx, pair.Access)
		assert.ErrorIs(t, err, ErrSessionRevoked)
	})
}

func TestService_Logout_RemovesAllSessions(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	user, _ := registerAlice(t, f)
	_, _, err := f.service.Login(ctx, LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, user))

	sessions, err := f.sessions.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// a second logout has nothing left to revoke
	assert.ErrorIs(t, f.service.Logout(ctx, user), ErrSessionRevoked)
}
