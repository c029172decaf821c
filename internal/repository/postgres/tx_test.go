package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func TestTransactor_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx := NewTransactor(db)
	repo := NewEventRepository(db)

	err = tx.WithinTx(context.Background(), func(ctx context.Context) error {
		return repo.IncrementRegistrations(ctx, "ev-1")
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	tx := NewTransactor(db)
	err = tx.WithinTx(context.Background(), func(ctx context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_NestedCallJoinsTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Only one Begin/Commit pair even though WithinTx nests.
	mock.ExpectBegin()
	mock.ExpectCommit()

	tx := NewTransactor(db)
	err = tx.WithinTx(context.Background(), func(ctx context.Context) error {
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			return nil
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_ClassifiesRetryableErrors(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, wantTransient: true},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, wantTransient: true},
		{name: "lock not available", err: &pq.Error{Code: "55P03"}, wantTransient: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantTransient: true},
		{name: "unique violation stays put", err: &pq.Error{Code: "23505"}, wantTransient: false},
		{name: "business sentinel stays put", err: domain.ErrEventFull, wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectRollback()

			tx := NewTransactor(db)
			err = tx.WithinTx(context.Background(), func(ctx context.Context) error {
				return tt.err
			})
			if tt.wantTransient {
				require.ErrorIs(t, err, domain.ErrTransient)
			} else {
				require.NotErrorIs(t, err, domain.ErrTransient)
				require.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestQ_UsesDBOutsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE events`).WillReturnResult(sqlmock.NewResult(0, 1))

	// No Begin expected: outside a transaction the repo talks to the pool.
	repo := NewEventRepository(db)
	require.NoError(t, repo.IncrementRegistrations(context.Background(), "ev-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
