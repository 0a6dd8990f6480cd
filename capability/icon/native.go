package icon

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"walletbridge/channel"
	"walletbridge/platform"
)

// Native drives a platform alternate-icon primitive. Variant names are
// used as the platform's icon names.
type Native struct {
	icons   platform.AlternateIcons
	catalog Catalog
	log     *zap.Logger

	mu      sync.Mutex
	pending int
}

// NewNative returns a Native switcher.
func NewNative(icons platform.AlternateIcons, catalog Catalog, log *zap.Logger) *Native {
	return &Native{icons: icons, catalog: catalog, log: log}
}

// SetVariant requests variant and resolves when the platform completion
// fires.
func (n *Native) SetVariant(ctx context.Context, variant string) *channel.Reply {
	if !n.icons.SupportsAlternateIcons() {
		if variant == Baseline {
			return channel.Succeed(nil)
		}
		return channel.Fail(channel.Errorf(channel.CodeNotSupported, "alternate icons are not supported on this device"))
	}
	if !n.catalog.Declared(variant) {
		return notDeclared(variant)
	}

	// Re-applying the active icon makes some platforms show a change
	// notice or report a spurious failure. The platform's answer is stale
	// while a change is in flight.
	n.mu.Lock()
	if n.pending == 0 {
		if current, err := n.icons.AlternateIconName(); err == nil && current == variant {
			n.mu.Unlock()
			return channel.Succeed(nil)
		}
	}
	n.pending++
	n.mu.Unlock()

	reply := channel.NewReply()
	n.icons.SetAlternateIconName(variant, func(err error) {
		n.mu.Lock()
		n.pending--
		n.mu.Unlock()
		if err != nil {
			n.log.Warn("alternate icon change failed", zap.String("variant", variant), zap.Error(err))
			reply.Resolve(channel.Failure(channel.AsCallError(err, channel.CodeIconChangeFailed)))
			return
		}
		n.log.Info("alternate icon changed", zap.String("variant", variant))
		reply.Resolve(channel.Success(nil))
	})
	return reply
}

// CurrentVariant returns the platform's active alternate icon.
func (n *Native) CurrentVariant(context.Context) (string, error) {
	name, err := n.icons.AlternateIconName()
	if err != nil {
		return Baseline, channel.AsCallError(err, channel.CodeGetIconFailed)
	}
	return name, nil
}
