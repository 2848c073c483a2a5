package storefront_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/storefront"
)

func TestFileStoragePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop", "state.json")
	fs, err := storefront.NewFileStorage(path)
	require.NoError(t, err)

	st := storefront.NewStore(fs)
	require.NoError(t, st.SetToken("tok"))
	require.NoError(t, st.SetCurrentUser(models.User{ID: 3, Email: "a@test.local"}))
	require.NoError(t, st.SetLastSummarizedIndex(10))

	reopened, err := storefront.NewFileStorage(path)
	require.NoError(t, err)
	st = storefront.NewStore(reopened)
	assert.Equal(t, "tok", st.Token())
	u, ok := st.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, 3, u.ID)
	assert.Equal(t, 10, st.LastSummarizedIndex())

	require.NoError(t, st.ClearSession())
	assert.Empty(t, st.Token())
	_, ok = st.CurrentUser()
	assert.False(t, ok)
	assert.Equal(t, 10, st.LastSummarizedIndex(), "chat state survives logout")
}

func TestFileStorageRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := storefront.NewFileStorage(path)
	assert.Error(t, err)
}

func TestStoreIgnoresUnreadableValues(t *testing.T) {
	mem := storefront.NewMemoryStorage()
	require.NoError(t, mem.Set(storefront.KeyCurrentUser, "garbage"))
	require.NoError(t, mem.Set(storefront.KeyLastSummarizedIndex, "x"))
	st := storefront.NewStore(mem)

	_, ok := st.CurrentUser()
	assert.False(t, ok)
	assert.Zero(t, st.LastSummarizedIndex())
	assert.Empty(t, st.CheckoutItems())
}
