// Package icon switches between pre-declared application icon identities.
//
// Hosts either have a native alternate-icon primitive (Native) or express
// each identity as a launcher component, exactly one of which is enabled
// at a time (Alias). Hosts with neither get Unsupported. All three satisfy
// the same contract: after a successful SetVariant(v), CurrentVariant
// reports v, and Baseline means the primary identity.
package icon

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"walletbridge/channel"
	"walletbridge/platform"
)

// Baseline names the primary identity.
const Baseline = ""

// DefaultVariant is used when a caller enables the event icon without
// naming one.
const DefaultVariant = "birthday"

// Switcher changes and reports the active icon identity.
type Switcher interface {
	// SetVariant requests variant. The reply resolves once the platform
	// has accepted or rejected the change.
	SetVariant(ctx context.Context, variant string) *channel.Reply
	// CurrentVariant queries the platform for the active identity.
	CurrentVariant(ctx context.Context) (string, error)
}

// Catalog declares the identities an application ships with.
type Catalog struct {
	// Default is the variant selected when none is named.
	Default string `mapstructure:"default"`
	// Main is the launcher component of the baseline identity.
	Main string `mapstructure:"main"`
	// Variants maps variant names to their launcher components.
	Variants map[string]string `mapstructure:"variants"`
}

// Declared reports whether variant is Baseline or a declared variant.
func (c Catalog) Declared(variant string) bool {
	if variant == Baseline {
		return true
	}
	_, ok := c.Variants[variant]
	return ok
}

// Names lists the declared variants in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.Variants))
	for name := range c.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pick maps an enable flag and optional name to a variant.
func (c Catalog) Pick(enable bool, name *string) string {
	if !enable {
		return Baseline
	}
	if name != nil && *name != "" {
		return *name
	}
	if c.Default != "" {
		return c.Default
	}
	return DefaultVariant
}

func notDeclared(variant string) *channel.Reply {
	return channel.Fail(channel.Errorf(channel.CodeIconNotDeclared, "icon %q is not declared by the application", variant))
}

// Select picks the strategy matching the host's capabilities.
func Select(host platform.Host, catalog Catalog, log *zap.Logger) Switcher {
	if log == nil {
		log = zap.NewNop()
	}
	switch h := host.(type) {
	case platform.AlternateIcons:
		log.Debug("icon strategy selected", zap.String("strategy", "native"))
		return NewNative(h, catalog, log)
	case platform.ComponentRegistry:
		log.Debug("icon strategy selected", zap.String("strategy", "alias"))
		return NewAlias(h, catalog, log)
	default:
		log.Debug("icon strategy selected", zap.String("strategy", "unsupported"))
		return Unsupported{}
	}
}

// Unsupported is the strategy for hosts without any icon mechanism.
type Unsupported struct{}

func (Unsupported) SetVariant(_ context.Context, variant string) *channel.Reply {
	if variant == Baseline {
		return channel.Succeed(nil)
	}
	return channel.Fail(channel.Errorf(channel.CodeNotSupported, "alternate icons are not supported on this platform"))
}

func (Unsupported) CurrentVariant(context.Context) (string, error) {
	return Baseline, nil
}
