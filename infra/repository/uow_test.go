package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockUoW(t *testing.T) (*UoW, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDb.Close() })
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)
	return NewUoW(db), mock
}

func TestUoW_DoAndGetRepository(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	uow, mock := newMockUoW(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		repoAny, err := txUow.GetRepository(reflect.TypeOf((*repository.AccountRepository)(nil)).Elem())
		require.NoError(err)
		_, ok := repoAny.(*accountRepository)
		assert.True(ok)

		repoAny, err = txUow.GetRepository(reflect.TypeOf((*repository.TransactionRepository)(nil)).Elem())
		require.NoError(err)
		_, ok = repoAny.(*transactionRepository)
		assert.True(ok)

		_, err = txUow.GetRepository(reflect.TypeOf(""))
		assert.Error(err)
		return nil
	})
	assert.NoError(err)
	assert.NoError(mock.ExpectationsWereMet())
}

func TestUoW_TypeSafeMethods(t *testing.T) {
	require := require.New(t)
	uow, mock := newMockUoW(t)

	check := func(u repository.UnitOfWork) {
		_, err := u.AccountRepository()
		require.NoError(err)
		_, err = u.TransactionRepository()
		require.NoError(err)
		_, err = u.SplitRepository()
		require.NoError(err)
		_, err = u.ObligationRepository()
		require.NoError(err)
		_, err = u.PaymentRepository()
		require.NoError(err)
		_, err = u.SeriesRepository()
		require.NoError(err)
		_, err = u.BudgetPeriodRepository()
		require.NoError(err)
		_, err = u.BudgetRepository()
		require.NoError(err)
	}
	check(uow)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		check(txUow)
		return nil
	}))
}

func TestUoW_AfterCommitRunsOnlyOnCommit(t *testing.T) {
	uow, mock := newMockUoW(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	var ran []string
	err := uow.Do(ctx, func(txUow repository.UnitOfWork) error {
		txUow.AfterCommit(func(context.Context) { ran = append(ran, "first") })
		// Nested units join the outer transaction and share its hooks.
		return txUow.Do(ctx, func(inner repository.UnitOfWork) error {
			inner.AfterCommit(func(context.Context) { ran = append(ran, "nested") })
			assert.Empty(t, ran)
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "nested"}, ran)

	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")
	err = uow.Do(ctx, func(txUow repository.UnitOfWork) error {
		txUow.AfterCommit(func(context.Context) { ran = append(ran, "rolled back") })
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ran, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_AfterCommitOutsideTransaction(t *testing.T) {
	uow, _ := newMockUoW(t)
	called := false
	uow.AfterCommit(func(context.Context) { called = true })
	assert.True(t, called)
}

func TestUoW_HookContextSurvivesCancel(t *testing.T) {
	uow, mock := newMockUoW(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock.ExpectBegin()
	mock.ExpectCommit()
	var hookCtx context.Context
	require.NoError(t, uow.Do(ctx, func(txUow repository.UnitOfWork) error {
		txUow.AfterCommit(func(hctx context.Context) { hookCtx = hctx })
		return nil
	}))
	require.NotNil(t, hookCtx)
	cancel()
	assert.NoError(t, hookCtx.Err())
}
