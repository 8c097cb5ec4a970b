package memory

import (
	"context"
	"testing"

	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DefinitionContentRepository_FindByFileName(t *testing.T) {
	t.Parallel()
	repo := NewDefinitionContentRepository(NewStore(nil))
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, content("B", "b.xml")))
	require.NoError(t, repo.Save(ctx, content("A", "a.xml")))

	got, err := repo.FindByFileName(ctx, "b.xml")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Identifier)

	_, err = repo.FindByFileName(ctx, "c.xml")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Identifier)
	assert.Equal(t, "B", all[1].Identifier)
}

func Test_DefinitionContentRepository_DeleteMissingIsNoop(t *testing.T) {
	t.Parallel()
	repo := NewDefinitionContentRepository(NewStore(nil))
	assert.NoError(t, repo.Delete(context.Background(), "missing"))
}

func Test_DefinitionRepository_CopiesOnSaveAndFind(t *testing.T) {
	t.Parallel()
	repo := NewDefinitionRepository(NewStore(nil))
	ctx := context.Background()

	def := &entities.Definition{
		Identifier: "A",
		Revision:   1,
		Fields:     []entities.Field{{Name: "f1", Type: "string"}},
	}
	require.NoError(t, repo.Save(ctx, def))
	def.Fields[0].Type = "mutated"

	got, err := repo.FindByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "string", got.Fields[0].Type)

	got.Fields[0].Type = "mutated"
	again, err := repo.FindByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "string", again.Fields[0].Type)
}

func Test_DefinitionRepository_Save_RequiresIdentifier(t *testing.T) {
	t.Parallel()
	repo := NewDefinitionRepository(NewStore(nil))
	assert.Error(t, repo.Save(context.Background(), &entities.Definition{}))
}

func Test_LabelAndFilterRepositories(t *testing.T) {
	t.Parallel()
	store := NewStore(nil)
	labels := NewLabelRepository(store)
	filters := NewFilterRepository(store)
	ctx := context.Background()

	require.NoError(t, labels.SaveAll(ctx, []entities.Label{
		{ID: "L1", Values: map[string]string{"en": "Name"}, DefinedIn: "A"},
	}))
	require.NoError(t, filters.SaveAll(ctx, []entities.Filter{
		{ID: "F1", Mode: "include", Values: []string{"A0", "A2"}, DefinedIn: "A"},
	}))

	l, err := labels.FindByID(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, "Name", l.Values["en"])

	f, err := filters.FindByID(ctx, "F1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A0", "A2"}, f.Values)

	_, err = labels.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = filters.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
