package catalog

import (
	"testing"

	"topup-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Len(t, c.Services(), 30)
	assert.Equal(t, []string{"Small Packs", "Normal Packs", "Big Packs", "Passes"}, c.Categories())
}

func TestLookup(t *testing.T) {
	c := Default()

	svc, ok := c.ByID("diamonds-86")
	require.True(t, ok)
	assert.Equal(t, "86 Diamonds", svc.Name)
	assert.Equal(t, int64(110), svc.Price)

	svc, ok = c.ByName("Weekly Pass")
	require.True(t, ok)
	assert.Equal(t, "weekly-pass", svc.ID)

	_, ok = c.ByID("diamonds-999999")
	assert.False(t, ok)
}

func TestLookupReturnsCopy(t *testing.T) {
	c := Default()

	svc, _ := c.ByID("diamonds-5")
	svc.Price = 1

	again, _ := c.ByID("diamonds-5")
	assert.Equal(t, int64(15), again.Price)
}

func TestCategoryOrderFollowsFirstAppearance(t *testing.T) {
	c := New([]models.Service{
		{ID: "a", Name: "A", Category: "Z"},
		{ID: "b", Name: "B", Category: "Y"},
		{ID: "c", Name: "C", Category: "Z"},
	})

	assert.Equal(t, []string{"Z", "Y"}, c.Categories())
}
