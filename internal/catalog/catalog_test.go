// AngelaMos | 2026
// catalog_test.go

package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedLoads(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)

	products := svc.List(context.Background())
	require.NotEmpty(t, products)

	for _, p := range products {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.Greater(t, p.Price, 0.0)
	}
}

func TestGet(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	ctx := context.Background()

	p, ok := svc.Get(ctx, "apex-pro")
	require.True(t, ok)
	assert.Equal(t, "APEX PRO Wireless", p.Name)
	assert.Equal(t, 129.0, p.Price)

	_, ok = svc.Get(ctx, "ghost-product")
	assert.False(t, ok)
}

func TestByCategory(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)

	mice := svc.ByCategory(context.Background(), "gaming mouse")
	require.Len(t, mice, 1)
	assert.Equal(t, "apex-pro", mice[0].ID)

	assert.Empty(t, svc.ByCategory(context.Background(), "toasters"))
}

func TestProductAdaptsForCart(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)

	cp, ok := svc.Product(context.Background(), "usb-c-hub")
	require.True(t, ok)
	assert.Equal(t, "usb-c-hub", cp.ID)
	assert.Equal(t, "USB-C Hub 7-in-1", cp.Title)
	assert.Equal(t, 79.0, cp.Price)
}

func TestListReturnsCopy(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	ctx := context.Background()

	first := svc.List(ctx)
	first[0].Name = "tampered"

	fresh := svc.List(ctx)
	assert.NotEqual(t, "tampered", fresh[0].Name)
}
