package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"serverrewards/internal/model"
	"serverrewards/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemDraft(shortname string, category model.ItemCategory) *model.Product {
	p, _ := NewDraft(model.ProductItem)
	p.Item.Shortname = shortname
	p.Item.Category = category
	p.DisplayName = shortname
	return p
}

func commandDraft(name string, cmds ...string) *model.Product {
	p, _ := NewDraft(model.ProductCommand)
	p.DisplayName = name
	p.Command.Commands = cmds
	return p
}

// =============================================================================
// ID allocation
// =============================================================================

func TestCatalog_IDsAreSharedAndNeverReused(t *testing.T) {
	c := New()

	id0, err := c.Add(itemDraft("wood", model.CategoryResources))
	require.NoError(t, err)
	id1, err := c.Add(commandDraft("heal", "heal $player.id"))
	require.NoError(t, err)
	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)

	require.NoError(t, c.Delete(model.ProductCommand, id1))
	id2, err := c.Add(commandDraft("feed", "feed $player.id"))
	require.NoError(t, err)
	assert.Equal(t, 2, id2, "deleted IDs are not reused")
	assert.Equal(t, 3, c.NextID())
}

func TestCatalog_AddCopiesDraft(t *testing.T) {
	c := New()
	draft := commandDraft("heal", "heal")
	id, _ := c.Add(draft)

	draft.Command.Commands[0] = "changed"
	stored, ok := c.Find(model.ProductCommand, id)
	require.True(t, ok)
	assert.Equal(t, "heal", stored.Command.Commands[0])
	assert.Equal(t, model.DraftID, draft.ID, "the caller's draft keeps its draft ID")
}

func TestCatalog_SaveUpdatesExisting(t *testing.T) {
	c := New()
	id, _ := c.Add(itemDraft("wood", model.CategoryResources))

	edit, _ := c.Find(model.ProductItem, id)
	edit.Cost = 50
	savedID, err := c.Save(edit)
	require.NoError(t, err)
	assert.Equal(t, id, savedID)

	got, _ := c.Find(model.ProductItem, id)
	assert.Equal(t, 50, got.Cost)
	assert.Equal(t, 1, c.NextID())
}

func TestCatalog_NotFound(t *testing.T) {
	c := New()
	_, ok := c.Find(model.ProductKit, 0)
	assert.False(t, ok)
	_, ok = c.Find(model.ProductNone, 0)
	assert.False(t, ok)

	err := c.Delete(model.ProductKit, 9)
	assert.True(t, errors.Is(err, apierror.ErrNotFound))

	missing := itemDraft("wood", model.CategoryAll)
	missing.ID = 12
	_, err = c.Save(missing)
	assert.True(t, errors.Is(err, apierror.ErrNotFound))
}

func TestCatalog_AddRejectsUntyped(t *testing.T) {
	_, err := New().Add(&model.Product{ID: model.DraftID})
	assert.True(t, errors.Is(err, apierror.ErrInvalidField))
}

// =============================================================================
// Category index
// =============================================================================

func TestCatalog_ItemCategoriesFollowMutations(t *testing.T) {
	c := New()
	assert.Equal(t, []model.ItemCategory{model.CategoryAll}, c.ItemCategories())

	id, _ := c.Add(itemDraft("wood", model.CategoryResources))
	_, _ = c.Add(itemDraft("rifle.ak", model.CategoryWeapon))
	_, _ = c.Add(itemDraft("stones", model.CategoryResources))
	assert.Equal(t, []model.ItemCategory{model.CategoryAll, model.CategoryResources, model.CategoryWeapon}, c.ItemCategories())

	edit, _ := c.Find(model.ProductItem, id)
	edit.Item.Category = model.CategoryMedical
	require.NoError(t, c.Update(edit))
	assert.Equal(t, []model.ItemCategory{model.CategoryAll, model.CategoryMedical, model.CategoryWeapon, model.CategoryResources}, c.ItemCategories())

	for _, p := range c.List(model.ProductItem) {
		require.NoError(t, c.Delete(model.ProductItem, p.ID))
	}
	assert.Equal(t, []model.ItemCategory{model.CategoryAll}, c.ItemCategories())
}

// =============================================================================
// Documents
// =============================================================================

func TestCatalog_JSONRoundTrip(t *testing.T) {
	c := New()
	_, _ = c.Add(itemDraft("wood", model.CategoryResources))
	kit, _ := NewDraft(model.ProductKit)
	kit.DisplayName = "Starter"
	kit.Kit.KitName = "starter"
	_, _ = c.Add(kit)
	_, _ = c.Add(commandDraft("heal", "heal $player.id"))

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.EqualValues(t, 3, doc["ProductIndex"])
	assert.Len(t, doc["Items"], 1)

	restored := New()
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, 3, restored.NextID())
	got, ok := restored.Find(model.ProductKit, 1)
	require.True(t, ok)
	assert.Equal(t, "starter", got.Kit.KitName)
}

func TestCatalog_UnmarshalRaisesLaggingIndex(t *testing.T) {
	c := New()
	require.NoError(t, json.Unmarshal([]byte(`{"ProductIndex":0,"Items":[],"Kits":[{"ID":7,"DisplayName":"K","KitName":"k"}],"Commands":[]}`), c))
	assert.Equal(t, 8, c.NextID())
}
