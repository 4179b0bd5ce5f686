package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"serverrewards/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseRepository runs the behaviour every backend must share.
func exerciseRepository(t *testing.T, repo DocumentRepository) {
	t.Helper()
	ctx := context.Background()

	doc, err := repo.Load(ctx, model.DocBalances)
	require.NoError(t, err)
	assert.Nil(t, doc)

	ok, err := repo.Exists(ctx, model.DocBalances)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Save(ctx, model.DocBalances, []byte(`{"1":10}`)))
	require.NoError(t, repo.Save(ctx, model.DocBalances, []byte(`{"1":20}`)))

	doc, err = repo.Load(ctx, model.DocBalances)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, `{"1":20}`, string(doc.Body))
	assert.Equal(t, model.DocBalances, doc.Name)

	require.NoError(t, repo.BatchSave(ctx, []model.Document{
		{Name: model.DocProducts, Body: []byte(`{}`)},
		{Name: model.LegacyPlayerData, Body: []byte(`{"playerRP":{}}`)},
	}))

	names, err := repo.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.DocumentName{model.DocBalances, model.LegacyPlayerData, model.DocProducts}, names)

	moved, err := repo.Move(ctx, model.LegacyPlayerData, model.LegacyPlayerData.Archived())
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repo.Move(ctx, model.LegacyPlayerData, model.LegacyPlayerData.Archived())
	require.NoError(t, err)
	assert.False(t, moved, "source is gone")

	require.NoError(t, repo.Save(ctx, model.LegacyPlayerData, []byte(`{}`)))
	moved, err = repo.Move(ctx, model.LegacyPlayerData, model.LegacyPlayerData.Archived())
	require.NoError(t, err)
	assert.False(t, moved, "target exists")

	archived, err := repo.Load(ctx, model.LegacyPlayerData.Archived())
	require.NoError(t, err)
	require.NotNil(t, archived)
	assert.Equal(t, `{"playerRP":{}}`, string(archived.Body))

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats["total_documents"])
}

func TestFileDocumentRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileDocumentRepository(dir)
	require.NoError(t, err)
	defer repo.Close()

	exerciseRepository(t, repo)

	_, err = os.Stat(filepath.Join(dir, "ServerRewards", "v1", "player_data.json"))
	assert.NoError(t, err)
}

func TestFileDocumentRepository_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	repo, err := NewFileDocumentRepository(dir)
	require.NoError(t, err)

	names, err := repo.Names(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
