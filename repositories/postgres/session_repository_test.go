package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sessionRowColumns = []string{"id", "token_id", "user_id", "issued_at", "expires_at", "revoked", "revoked_at"}

func newTestSessionRepository(t *testing.T, now time.Time) (*SessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db, zap.NewNop()).(*SessionRepository)
	repo.now = func() time.Time { return now }
	return repo, mock
}

func TestSessionRepository_Create(t *testing.T) {
	ctx := context.Background()
	issuedAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	expiresAt := issuedAt.Add(240 * time.Hour)

	t.Run("assigns an id", func(t *testing.T) {
		repo, mock := newTestSessionRepository(t, issuedAt)
		input := models.NewSession(uuid.New(), uuid.New(), issuedAt, expiresAt)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session_tokens")).
			WithArgs(sqlmock.AnyArg(), input.TokenID, input.UserID, issuedAt, expiresAt, false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		stored, err := repo.Create(ctx, input)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, stored.ID)
		assert.Equal(t, uuid.Nil, input.ID, "input must not be mutated")
		assert.Equal(t, input.TokenID, stored.TokenID)
		assert.False(t, stored.Revoked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate token id", func(t *testing.T) {
		repo, mock := newTestSessionRepository(t, issuedAt)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session_tokens")).
			WillReturnError(&pq.Error{Code: "23505"})

		stored, err := repo.Create(ctx, models.NewSession(uuid.New(), uuid.New(), issuedAt, expiresAt))
		assert.Nil(t, stored)
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
	})
}

func TestSessionRepository_FindByTokenID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		repo, mock := newTestSessionRepository(t, now)
		id, tokenID, userID := uuid.New(), uuid.New(), uuid.New()
		revokedAt := now.Add(time.Hour)

		mock.ExpectQuery(regexp.QuoteMeta("FROM session_tokens WHERE token_id = $1")).
			WithArgs(tokenID).
			WillReturnRows(sqlmock.NewRows(sessionRowColumns).
				AddRow(id.String(), tokenID.String(), userID.String(), now, now.Add(240*time.Hour), true, revokedAt))

		session, err := repo.FindByTokenID(ctx, tokenID)
		require.NoError(t, err)
		assert.Equal(t, id, session.ID)
		assert.Equal(t, userID, session.UserID)
		assert.True(t, session.Revoked)
		require.NotNil(t, session.RevokedAt)
		assert.Equal(t, revokedAt, *session.RevokedAt)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newTestSessionRepository(t, now)
		tokenID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("FROM session_tokens WHERE token_id = $1")).
			WithArgs(tokenID).
			WillReturnRows(sqlmock.NewRows(sessionRowColumns))

		_, err := repo.FindByTokenID(ctx, tokenID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestSessionRepository_Revoke(t *testing.T) {
	now := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	repo, mock := newTestSessionRepository(t, now)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SET revoked = TRUE, revoked_at = COALESCE(revoked_at, $2)")).
		WithArgs(id, now).
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).
			AddRow(id.String(), uuid.NewString(), uuid.NewString(), now.Add(-time.Hour), now.Add(239*time.Hour), true, now))

	session, err := repo.Revoke(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, session.Revoked)
	assert.Equal(t, now, *session.RevokedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_ListActiveByUser(t *testing.T) {
	now := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	repo, mock := newTestSessionRepository(t, now)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2")).
		WithArgs(userID, now).
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).
			AddRow(uuid.NewString(), uuid.NewString(), userID.String(), now, now.Add(time.Hour), false, nil))

	sessions, err := repo.ListActiveByUser(context.Background(), userID, now)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Nil(t, sessions[0].RevokedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_RevokeAllForUser(t *testing.T) {
	now := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	issuedAt := now.Add(-time.Hour)
	userID := uuid.New()

	t.Run("returns the revoked rows", func(t *testing.T) {
		repo, mock := newTestSessionRepository(t, now)
		first, second := uuid.New(), uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND revoked = FALSE")).
			WithArgs(userID, now).
			WillReturnRows(sqlmock.NewRows(sessionRowColumns).
				AddRow(uuid.New().String(), first.String(), userID.String(), issuedAt, now.Add(time.Hour), true, now).
				AddRow(uuid.New().String(), second.String(), userID.String(), issuedAt, now.Add(time.Hour), true, now))

		revoked, err := repo.RevokeAllForUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, revoked, 2)
		assert.Equal(t, first, revoked[0].TokenID)
		assert.Equal(t, second, revoked[1].TokenID)
		for _, s := range revoked {
			assert.True(t, s.Revoked)
			require.NotNil(t, s.RevokedAt)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing to revoke", func(t *testing.T) {
		repo, mock := newTestSessionRepository(t, now)

		mock.ExpectQuery(regexp.QuoteMeta("RETURNING id, token_id")).
			WithArgs(userID, now).
			WillReturnRows(sqlmock.NewRows(sessionRowColumns))

		revoked, err := repo.RevokeAllForUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, revoked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store failure", func(t *testing.T) {
		repo, mock := newTestSessionRepository(t, now)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE session_tokens")).
			WithArgs(userID, now).
			WillReturnError(assert.AnError)

		revoked, err := repo.RevokeAllForUser(context.Background(), userID)
		assert.Error(t, err)
		assert.Nil(t, revoked)

		var pe *repositories.PersistenceError
		assert.ErrorAs(t, err, &pe)
	})
}
