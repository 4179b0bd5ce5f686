package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"serverrewards/internal/model"
	"serverrewards/pkg/apierror"
)

// Editable field names, matched case-insensitively.
const (
	FieldDisplayName    = "displayname"
	FieldCost           = "cost"
	FieldCooldown       = "cooldown"
	FieldIconURL        = "iconurl"
	FieldPermission     = "permission"
	FieldShortname      = "shortname"
	FieldAmount         = "amount"
	FieldSkinID         = "skinid"
	FieldIsBlueprint    = "isbp"
	FieldIgnoreDlcCheck = "ignoredlccheck"
	FieldKitName        = "kitname"
	FieldDescription    = "description"
)

// SetField applies one admin edit to a draft.
func SetField(ctx context.Context, env Env, p *model.Product, field, value string) error {
	field = strings.ToLower(strings.TrimSpace(field))

	switch field {
	case FieldDisplayName:
		p.DisplayName = value
		return nil
	case FieldCost:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return apierror.InvalidField(field, "cost must be a whole number")
		}
		p.Cost = max(n, 0)
		return nil
	case FieldCooldown:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return apierror.InvalidField(field, "cooldown must be a whole number of seconds")
		}
		p.Cooldown = max(n, 0)
		return nil
	case FieldIconURL:
		p.IconURL = validURL(value)
		return nil
	case FieldPermission:
		p.Permission = prefixPermission(value)
		return nil
	}

	c, ok := capabilities[p.Type()]
	if !ok {
		return apierror.InvalidField(field, "product has no type")
	}
	handled, err := c.setField(ctx, env, p, field, value)
	if err != nil {
		return err
	}
	if !handled {
		return apierror.InvalidField(field, fmt.Sprintf("%s has no field %q", p.Type(), field))
	}
	return nil
}

func validURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return raw
}

func prefixPermission(perm string) string {
	perm = strings.TrimSpace(perm)
	if perm == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(perm), model.PermissionPrefix) {
		return perm
	}
	return model.PermissionPrefix + perm
}

func setItemField(ctx context.Context, env Env, p *model.Product, field, value string) (bool, error) {
	item := p.Item
	switch field {
	case FieldShortname:
		value = strings.TrimSpace(value)
		if env.Items == nil {
			item.Shortname = value
			item.SkinID = 0
			return true, nil
		}
		def, ok := env.Items.Definition(ctx, value)
		if !ok {
			item.Shortname = DefaultItemShortname
			item.Category = model.CategoryWeapon
			p.DisplayName = DefaultItemName
			item.SkinID = 0
			return true, nil
		}
		item.Shortname = def.Shortname
		item.Category = def.Category.Normalize()
		p.DisplayName = def.DisplayName
		item.SkinID = 0
	case FieldAmount:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			item.Amount = 0
			return true, nil
		}
		item.Amount = max(n, 1)
	case FieldSkinID:
		n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			n = 0
		}
		item.SkinID = n
	case FieldIsBlueprint:
		item.IsBlueprint = parseBool(value)
	case FieldIgnoreDlcCheck:
		item.IgnoreOwnershipCheck = parseBool(value)
	default:
		return false, nil
	}
	return true, nil
}

func setKitField(ctx context.Context, env Env, p *model.Product, field, value string) (bool, error) {
	switch field {
	case FieldKitName:
		value = strings.TrimSpace(value)
		if env.Kits == nil || !env.Kits.IsKit(ctx, value) {
			p.Kit.KitName = ""
			p.DisplayName = ""
			return true, nil
		}
		p.Kit.KitName = value
		p.DisplayName = value
		if info, ok := env.Kits.Kit(ctx, value); ok {
			p.Kit.Description = info.Description
			p.IconURL = validURL(info.IconURL)
		}
	case FieldDescription:
		p.Kit.Description = value
	default:
		return false, nil
	}
	return true, nil
}

func setCommandField(_ context.Context, _ Env, p *model.Product, field, value string) (bool, error) {
	if field != FieldDescription {
		return false, nil
	}
	p.Command.Description = value
	return true, nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

// CommandAction edits a command product's list.
type CommandAction string

const (
	CommandAdd    CommandAction = "add"
	CommandEdit   CommandAction = "edit"
	CommandRemove CommandAction = "remove"
)

// SetCommand adds, edits or removes one entry of a command product's list.
// Add appends and ignores index.
func SetCommand(p *model.Product, action CommandAction, index int, value string) error {
	if p.Command == nil {
		return apierror.InvalidField("commands", "only command products have commands")
	}
	cmds := p.Command.Commands
	switch CommandAction(strings.ToLower(string(action))) {
	case CommandAdd:
		value = strings.TrimSpace(value)
		if value == "" {
			return apierror.InvalidField("commands", "command cannot be empty")
		}
		p.Command.Commands = append(cmds, value)
	case CommandEdit:
		if index < 0 || index >= len(cmds) {
			return apierror.InvalidField("commands", fmt.Sprintf("no command at index %d", index))
		}
		cmds[index] = strings.TrimSpace(value)
	case CommandRemove:
		if index < 0 || index >= len(cmds) {
			return apierror.InvalidField("commands", fmt.Sprintf("no command at index %d", index))
		}
		p.Command.Commands = append(cmds[:index], cmds[index+1:]...)
	default:
		return apierror.InvalidField("commands", fmt.Sprintf("unknown action %q", action))
	}
	return nil
}
