package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTransactionManager_InTransaction(t *testing.T) {
	t.Run("repositories join the transaction and commit", func(t *testing.T) {
		db, mock := newMockDB(t)
		txMgr := NewTransactionManager(db, zap.NewNop())
		products := NewProductRepository(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := txMgr.InTransaction(context.Background(), func(ctx context.Context, tx repositories.Transaction) error {
			_, ok := GetTransactionFromContext(ctx)
			require.True(t, ok)
			for _, slug := range []string{"a", "b"} {
				if err := products.Create(ctx, &models.Product{ID: uuid.New(), Title: "T", Slug: slug, CreatedAt: time.Now()}); err != nil {
					return err
				}
			}
			return nil
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		txMgr := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectRollback()

		fnErr := errors.New("bad row")
		err := txMgr.InTransaction(context.Background(), func(ctx context.Context, tx repositories.Transaction) error {
			return fnErr
		})

		assert.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetExecutor_WithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)
	_, ok := GetTransactionFromContext(context.Background())
	assert.False(t, ok)
	assert.Equal(t, db.DB, GetExecutor(context.Background(), db))
}
