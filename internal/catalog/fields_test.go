package catalog

import (
	"context"
	"errors"
	"testing"

	"serverrewards/internal/model"
	"serverrewards/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItems map[string]model.ItemDefinition

func (f fakeItems) Definition(_ context.Context, shortname string) (model.ItemDefinition, bool) {
	d, ok := f[shortname]
	return d, ok
}

func (f fakeItems) Definitions(context.Context) []model.ItemDefinition {
	out := make([]model.ItemDefinition, 0, len(f))
	for _, d := range f {
		out = append(out, d)
	}
	return out
}

type fakeKits map[string]model.KitInfo

func (f fakeKits) IsKit(_ context.Context, name string) bool {
	_, ok := f[name]
	return ok
}

func (f fakeKits) Kit(_ context.Context, name string) (model.KitInfo, bool) {
	k, ok := f[name]
	return k, ok
}

func (f fakeKits) Kits(context.Context) []model.KitInfo { return nil }

type recordingFulfiller struct {
	commands []string
	ok       bool
}

func (r *recordingFulfiller) GiveItem(context.Context, uint64, string, int, uint64, bool) bool {
	return r.ok
}
func (r *recordingFulfiller) GiveKit(context.Context, uint64, string) bool { return r.ok }
func (r *recordingFulfiller) RunCommands(_ context.Context, _ uint64, cmds []string) bool {
	r.commands = cmds
	return r.ok
}

var testEnv = Env{
	Items: fakeItems{
		"wood": {ItemID: 1, Shortname: "wood", DisplayName: "Wood", Category: model.CategoryResources},
	},
	Kits: fakeKits{
		"starter": {Name: "starter", Description: "Starter gear", IconURL: "https://img.example/starter.png"},
	},
}

func TestSetField_SharedFields(t *testing.T) {
	ctx := context.Background()
	p, _ := NewDraft(model.ProductCommand)

	require.NoError(t, SetField(ctx, testEnv, p, "DisplayName", "Heal"))
	require.NoError(t, SetField(ctx, testEnv, p, "cost", "-10"))
	require.NoError(t, SetField(ctx, testEnv, p, "cooldown", "30"))
	require.NoError(t, SetField(ctx, testEnv, p, "permission", "vip"))
	require.NoError(t, SetField(ctx, testEnv, p, "iconurl", "not a url"))

	assert.Equal(t, "Heal", p.DisplayName)
	assert.Equal(t, 0, p.Cost, "cost clamps at zero")
	assert.Equal(t, 30, p.Cooldown)
	assert.Equal(t, "serverrewards.vip", p.Permission)
	assert.Equal(t, "", p.IconURL)

	require.NoError(t, SetField(ctx, testEnv, p, "permission", "serverrewards.vip"))
	assert.Equal(t, "serverrewards.vip", p.Permission, "prefix is not doubled")

	err := SetField(ctx, testEnv, p, "cost", "abc")
	assert.True(t, errors.Is(err, apierror.ErrInvalidField))
	assert.Equal(t, 0, p.Cost)
}

func TestSetField_ItemShortname(t *testing.T) {
	ctx := context.Background()
	p, _ := NewDraft(model.ProductItem)
	p.Item.SkinID = 99

	require.NoError(t, SetField(ctx, testEnv, p, "shortname", "wood"))
	assert.Equal(t, "wood", p.Item.Shortname)
	assert.Equal(t, "Wood", p.DisplayName)
	assert.Equal(t, model.CategoryResources, p.Item.Category)
	assert.Zero(t, p.Item.SkinID)

	require.NoError(t, SetField(ctx, testEnv, p, "shortname", "nope"))
	assert.Equal(t, DefaultItemShortname, p.Item.Shortname)
	assert.Equal(t, DefaultItemName, p.DisplayName)
	assert.Equal(t, model.CategoryWeapon, p.Item.Category)
}

func TestSetField_ItemNumbers(t *testing.T) {
	ctx := context.Background()
	p, _ := NewDraft(model.ProductItem)

	require.NoError(t, SetField(ctx, testEnv, p, "amount", "0"))
	assert.Equal(t, 1, p.Item.Amount)
	require.NoError(t, SetField(ctx, testEnv, p, "amount", "x"))
	assert.Equal(t, 0, p.Item.Amount)
	assert.False(t, HasRequiredFields(p))

	require.NoError(t, SetField(ctx, testEnv, p, "skinid", "12345"))
	assert.Equal(t, uint64(12345), p.Item.SkinID)
	require.NoError(t, SetField(ctx, testEnv, p, "isbp", "true"))
	assert.True(t, p.Item.IsBlueprint)

	err := SetField(ctx, testEnv, p, "kitname", "starter")
	assert.True(t, errors.Is(err, apierror.ErrInvalidField))
}

func TestSetField_KitName(t *testing.T) {
	ctx := context.Background()
	p, _ := NewDraft(model.ProductKit)

	require.NoError(t, SetField(ctx, testEnv, p, "kitname", "starter"))
	assert.Equal(t, "starter", p.Kit.KitName)
	assert.Equal(t, "starter", p.DisplayName)
	assert.Equal(t, "Starter gear", p.Kit.Description)
	assert.Equal(t, "https://img.example/starter.png", p.IconURL)
	assert.True(t, HasRequiredFields(p))

	require.NoError(t, SetField(ctx, testEnv, p, "kitname", "missing"))
	assert.Empty(t, p.Kit.KitName)
	assert.Empty(t, p.DisplayName)
	assert.False(t, HasRequiredFields(p))
}

func TestSetCommand(t *testing.T) {
	p, _ := NewDraft(model.ProductCommand)
	p.DisplayName = "Bundle"
	assert.False(t, HasRequiredFields(p))

	require.NoError(t, SetCommand(p, CommandAdd, 0, "a"))
	require.NoError(t, SetCommand(p, CommandAdd, 0, "b"))
	require.NoError(t, SetCommand(p, CommandEdit, 1, "c"))
	assert.Equal(t, []string{"a", "c"}, p.Command.Commands)
	assert.True(t, HasRequiredFields(p))

	require.NoError(t, SetCommand(p, CommandRemove, 0, ""))
	assert.Equal(t, []string{"c"}, p.Command.Commands)

	assert.True(t, errors.Is(SetCommand(p, CommandEdit, 5, "x"), apierror.ErrInvalidField))
	assert.True(t, errors.Is(SetCommand(p, "swap", 0, "x"), apierror.ErrInvalidField))
}

func TestFulfill_ExpandsCommandTemplates(t *testing.T) {
	f := &recordingFulfiller{ok: true}
	p := commandDraft("tp", "teleport $player.id $player.x $player.y $player.z", "say hi $player.name")
	buyer := model.Player{ID: 7, Name: "Alex", Position: model.Position{X: 1.5, Y: 2, Z: -3.25}}

	assert.True(t, Fulfill(context.Background(), f, p, buyer))
	assert.Equal(t, []string{"teleport 7 1.5 2 -3.25", "say hi Alex"}, f.commands)

	assert.False(t, Fulfill(context.Background(), nil, p, buyer))
}

func TestPurchaseName(t *testing.T) {
	item := itemDraft("wood", model.CategoryResources)
	item.DisplayName = "Wood"
	item.Item.Amount = 1000
	assert.Equal(t, "1000 x Wood", PurchaseName(item))

	assert.Equal(t, "heal", PurchaseName(commandDraft("heal", "x")))
}
