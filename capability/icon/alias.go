package icon

import (
	"context"

	"go.uber.org/zap"

	"walletbridge/channel"
	"walletbridge/platform"
)

// Alias switches identities by enabling exactly one launcher component:
// the catalog's Main component for Baseline, or the variant's component.
type Alias struct {
	components platform.ComponentRegistry
	catalog    Catalog
	log        *zap.Logger
}

// NewAlias returns an Alias switcher.
func NewAlias(components platform.ComponentRegistry, catalog Catalog, log *zap.Logger) *Alias {
	return &Alias{components: components, catalog: catalog, log: log}
}

func (a *Alias) component(variant string) string {
	if variant == Baseline {
		return a.catalog.Main
	}
	return a.catalog.Variants[variant]
}

// SetVariant enables the target component first and then disables every
// other declared component, so the launcher is never left without an
// entry point.
func (a *Alias) SetVariant(_ context.Context, variant string) *channel.Reply {
	if !a.catalog.Declared(variant) {
		return notDeclared(variant)
	}
	target := a.component(variant)
	if target == "" {
		return channel.Fail(channel.Errorf(channel.CodeIconChangeFailed, "no launcher component declared for icon %q", variant))
	}

	if err := a.components.SetComponentEnabled(target, true); err != nil {
		a.log.Warn("enable component failed", zap.String("component", target), zap.Error(err))
		return channel.FromError(err, channel.CodeIconChangeFailed)
	}
	for _, other := range a.others(target) {
		if err := a.components.SetComponentEnabled(other, false); err != nil {
			a.log.Warn("disable component failed", zap.String("component", other), zap.Error(err))
			return channel.FromError(err, channel.CodeIconChangeFailed)
		}
	}

	a.log.Info("launcher alias switched", zap.String("variant", variant), zap.String("component", target))
	return channel.Succeed(nil)
}

func (a *Alias) others(target string) []string {
	seen := map[string]bool{target: true}
	var out []string
	add := func(c string) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	add(a.catalog.Main)
	for _, name := range a.catalog.Names() {
		add(a.catalog.Variants[name])
	}
	return out
}

// CurrentVariant reports the first declared variant whose component is
// enabled, or Baseline when none is.
func (a *Alias) CurrentVariant(context.Context) (string, error) {
	for _, name := range a.catalog.Names() {
		enabled, err := a.components.ComponentEnabled(a.catalog.Variants[name])
		if err != nil {
			return Baseline, channel.AsCallError(err, channel.CodeGetIconFailed)
		}
		if enabled {
			return name, nil
		}
	}
	return Baseline, nil
}
