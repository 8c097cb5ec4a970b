package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func content(id, file string) entities.DefinitionContent {
	return entities.DefinitionContent{Identifier: id, FileName: file, Content: "<definition id=\"" + id + "\"/>"}
}

func Test_Store_InTransaction_CommitsOnSuccess(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	repo := NewDefinitionContentRepository(store)
	ctx := context.Background()

	err := store.InTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.Save(ctx, content("A", "a.xml")))

		// visible inside the transaction
		_, err := repo.FindByID(ctx, "A")
		require.NoError(t, err)

		// not visible outside before commit
		_, err = repo.FindByID(context.Background(), "A")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "a.xml", got.FileName)
}

func Test_Store_InTransaction_DiscardsOnError(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	repo := NewDefinitionContentRepository(store)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, content("A", "a.xml")))

	err := store.InTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.Save(ctx, content("B", "b.xml")))
		require.NoError(t, repo.Delete(ctx, "A"))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "A", all[0].Identifier)
}

func Test_Store_InTransaction_JoinsActive(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	repo := NewDefinitionContentRepository(store)
	ctx := context.Background()

	err := store.InTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.InTransaction(ctx, func(ctx context.Context) error {
			return repo.Save(ctx, content("A", "a.xml"))
		}))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = repo.FindByID(ctx, "A")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func Test_Store_InNewTransaction_CommitsIndependently(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	repo := NewDefinitionContentRepository(store)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, content("OLD", "a.xml")))

	err := store.InTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.Save(ctx, content("NEW", "a.xml")))
		require.NoError(t, store.InNewTransaction(ctx, func(ctx context.Context) error {
			return repo.Delete(ctx, "OLD")
		}))

		// committed immediately
		_, err := repo.FindByID(context.Background(), "OLD")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = repo.FindByID(ctx, "OLD")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.FindByID(ctx, "NEW")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func Test_Store_OnRollback_RunsCompensations(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	repo := NewDefinitionContentRepository(store)
	ctx := context.Background()
	removed := content("OLD", "a.xml")
	require.NoError(t, repo.Save(ctx, removed))

	var order []string
	err := store.InTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.InNewTransaction(ctx, func(ctx context.Context) error {
			if err := repo.Delete(ctx, "OLD"); err != nil {
				return err
			}
			// registered from inside the independent transaction
			return store.OnRollback(ctx, func(ctx context.Context) error {
				order = append(order, "first")
				return nil
			})
		}))
		require.NoError(t, store.OnRollback(ctx, func(ctx context.Context) error {
			order = append(order, "restore")
			return repo.Save(ctx, removed)
		}))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"restore", "first"}, order)

	got, err := repo.FindByID(ctx, "OLD")
	require.NoError(t, err)
	assert.Equal(t, removed, *got)
}

func Test_Store_OnRollback_NotRunOnCommit(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	ctx := context.Background()

	ran := false
	err := store.InTransaction(ctx, func(ctx context.Context) error {
		return store.OnRollback(ctx, func(context.Context) error {
			ran = true
			return nil
		})
	})
	require.NoError(t, err)
	assert.False(t, ran)
}

func Test_Store_OnRollback_CompensationFailureIsJoined(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	ctx := context.Background()
	errRestore := errors.New("restore failed")

	err := store.InTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.OnRollback(ctx, func(context.Context) error {
			return errRestore
		}))
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, err, errRestore)
}

func Test_Store_OnRollback_RequiresTransaction(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)

	err := store.OnRollback(context.Background(), func(context.Context) error { return nil })
	assert.Error(t, err)
}
