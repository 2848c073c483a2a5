package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddMergesExistingLine(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 10)
	b := st.addProduct(t, "B", 50000, 10)

	res, err := st.carts.Add(1, a.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.NewLine)

	res, err = st.carts.Add(1, a.ID, 2)
	require.NoError(t, err)
	assert.False(t, res.NewLine)
	assert.Equal(t, 3, res.Item.Quantity)
	assert.Equal(t, 1, st.carts.Count(1))

	res, err = st.carts.Add(1, b.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.NewLine)
	assert.Equal(t, 2, st.carts.Count(1))
	assert.Equal(t, 0, st.carts.Count(2))
}

func TestCartRejectsBadQuantityAndStock(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 2)

	_, err := st.carts.Add(1, a.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = st.carts.Add(1, a.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = st.carts.Add(1, 404, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := st.carts.Add(1, a.ID, 1)
	require.NoError(t, err)

	_, err = st.carts.UpdateQuantity(1, res.Item.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = st.carts.UpdateQuantity(1, res.Item.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	item, err := st.carts.UpdateQuantity(1, res.Item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
}

func TestCartItemsAreScopedToOwner(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 5)
	res, err := st.carts.Add(1, a.ID, 1)
	require.NoError(t, err)

	_, err = st.carts.UpdateQuantity(2, res.Item.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.carts.Remove(2, res.Item.ID), ErrNotFound)

	require.NoError(t, st.carts.Remove(1, res.Item.ID))
	assert.Empty(t, st.carts.List(1))
}

func TestCartListSnapshotsAndClear(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 5)
	b := st.addProduct(t, "B", 100000, 5)
	_, _ = st.carts.Add(1, a.ID, 1)
	_, _ = st.carts.Add(1, b.ID, 1)

	require.NoError(t, st.products.Delete(b.ID))
	lines := st.carts.List(1)
	require.Len(t, lines, 1)
	require.NotNil(t, lines[0].Product)
	assert.Equal(t, "A", lines[0].Product.Name)

	st.carts.Clear(1)
	assert.Empty(t, st.carts.List(1))
	assert.Equal(t, 0, st.carts.Count(1))
}
