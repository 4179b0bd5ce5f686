package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"serverrewards/internal/model"
	"serverrewards/internal/provider"
	"serverrewards/pkg/apierror"
)

// Default item for new drafts and for shortnames that do not resolve.
const (
	DefaultItemShortname = "rifle.ak"
	DefaultItemName      = "Assault Rifle"
)

// Env supplies the lookups field edits need. Nil members are unavailable.
type Env struct {
	Items provider.Items
	Kits  provider.Kits
}

// capability is the per-type behaviour table entry.
type capability struct {
	newDraft          func() *model.Product
	hasRequiredFields func(p *model.Product) bool
	setField          func(ctx context.Context, env Env, p *model.Product, field, value string) (bool, error)
	fulfill           func(ctx context.Context, f provider.Fulfiller, p *model.Product, buyer model.Player) bool
	purchaseName      func(p *model.Product) string
}

var capabilities = map[model.ProductType]capability{
	model.ProductItem: {
		newDraft: func() *model.Product {
			return &model.Product{
				ID:          model.DraftID,
				DisplayName: DefaultItemName,
				Item: &model.ItemPayload{
					Shortname: DefaultItemShortname,
					Amount:    1,
					Category:  model.CategoryWeapon,
				},
			}
		},
		hasRequiredFields: func(p *model.Product) bool {
			return p.Item.Shortname != "" && p.DisplayName != "" && p.Item.Amount > 0
		},
		setField: setItemField,
		fulfill: func(ctx context.Context, f provider.Fulfiller, p *model.Product, buyer model.Player) bool {
			return f.GiveItem(ctx, buyer.ID, p.Item.Shortname, p.Item.Amount, p.Item.SkinID, p.Item.IsBlueprint)
		},
		purchaseName: func(p *model.Product) string {
			if p.Item.Amount > 0 {
				return fmt.Sprintf("%d x %s", p.Item.Amount, p.DisplayName)
			}
			return p.DisplayName
		},
	},
	model.ProductKit: {
		newDraft: func() *model.Product {
			return &model.Product{ID: model.DraftID, Kit: &model.KitPayload{}}
		},
		hasRequiredFields: func(p *model.Product) bool {
			return p.Kit.KitName != "" && p.DisplayName != ""
		},
		setField: setKitField,
		fulfill: func(ctx context.Context, f provider.Fulfiller, p *model.Product, buyer model.Player) bool {
			return f.GiveKit(ctx, buyer.ID, p.Kit.KitName)
		},
		purchaseName: func(p *model.Product) string { return p.DisplayName },
	},
	model.ProductCommand: {
		newDraft: func() *model.Product {
			return &model.Product{ID: model.DraftID, Command: &model.CommandPayload{}}
		},
		hasRequiredFields: func(p *model.Product) bool {
			return p.DisplayName != "" && len(p.Command.Commands) > 0
		},
		setField: setCommandField,
		fulfill: func(ctx context.Context, f provider.Fulfiller, p *model.Product, buyer model.Player) bool {
			commands := make([]string, len(p.Command.Commands))
			for i, c := range p.Command.Commands {
				commands[i] = ExpandCommand(c, buyer)
			}
			return f.RunCommands(ctx, buyer.ID, commands)
		},
		purchaseName: func(p *model.Product) string { return p.DisplayName },
	},
}

// NewDraft returns an unsaved product of type t with its defaults.
func NewDraft(t model.ProductType) (*model.Product, error) {
	c, ok := capabilities[t]
	if !ok {
		return nil, apierror.InvalidField("type", "unknown product type")
	}
	return c.newDraft(), nil
}

// HasRequiredFields reports whether a draft can be saved.
func HasRequiredFields(p *model.Product) bool {
	c, ok := capabilities[p.Type()]
	return ok && c.hasRequiredFields(p)
}

// Fulfill delivers the product to the buyer. A nil fulfiller never delivers.
func Fulfill(ctx context.Context, f provider.Fulfiller, p *model.Product, buyer model.Player) bool {
	c, ok := capabilities[p.Type()]
	if !ok || f == nil {
		return false
	}
	return c.fulfill(ctx, f, p, buyer)
}

// PurchaseName is the label shown on purchase confirmations.
func PurchaseName(p *model.Product) string {
	c, ok := capabilities[p.Type()]
	if !ok {
		return p.DisplayName
	}
	return c.purchaseName(p)
}

var templateFields = []string{"$player.id", "$player.name", "$player.x", "$player.y", "$player.z"}

// ExpandCommand substitutes the buyer's identity and position into a command
// template.
func ExpandCommand(template string, buyer model.Player) string {
	r := strings.NewReplacer(
		templateFields[0], strconv.FormatUint(buyer.ID, 10),
		templateFields[1], buyer.Name,
		templateFields[2], strconv.FormatFloat(buyer.Position.X, 'f', -1, 64),
		templateFields[3], strconv.FormatFloat(buyer.Position.Y, 'f', -1, 64),
		templateFields[4], strconv.FormatFloat(buyer.Position.Z, 'f', -1, 64),
	)
	return r.Replace(template)
}
