package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	tx     *fakeTx
	nextID int64
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) { return f.tx, nil }

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not used")
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return scanRow{id: f.nextID}
}

// fakeTx scripts the category-delete transaction: the reference count first,
// then the delete.
type fakeTx struct {
	pgx.Tx

	productRefs int
	deletes     int
	committed   bool
	rolledBack  bool
}

type scanRow struct {
	n  int
	id int64
}

func (r scanRow) Scan(dest ...any) error {
	switch p := dest[0].(type) {
	case *int:
		*p = r.n
	case *int64:
		*p = r.id
	}
	return nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return scanRow{n: t.productRefs}
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.deletes++
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func TestDeleteCategoryWithoutReferences(t *testing.T) {
	tx := &fakeTx{productRefs: 0}
	repo := &Repo{DB: &fakeDB{tx: tx}}

	err := repo.DeleteCategory(context.Background(), 3)

	require.NoError(t, err)
	require.Equal(t, 1, tx.deletes)
	require.True(t, tx.committed)
}

func TestDeleteCategoryInUseIsRejected(t *testing.T) {
	tx := &fakeTx{productRefs: 4}
	repo := &Repo{DB: &fakeDB{tx: tx}}

	err := repo.DeleteCategory(context.Background(), 3)

	require.True(t, errors.Is(err, ErrCategoryInUse))
	// nothing may be written before the guard fires
	require.Zero(t, tx.deletes)
	require.False(t, tx.committed)
	require.True(t, tx.rolledBack)
}

func TestSaveProductInsertAssignsID(t *testing.T) {
	repo := &Repo{DB: &fakeDB{nextID: 9}}
	p := &Product{Code: "9", Name: "Pepperoni"}

	err := repo.SaveProduct(context.Background(), p)

	require.NoError(t, err)
	require.Equal(t, int64(9), p.ID)
}
