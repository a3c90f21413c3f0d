// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"time"

	"github.com/arraypress/flyouts/domain/panel"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// -----------------------------------------------------------------------------
// Host Collaborator Ports
// -----------------------------------------------------------------------------

// PermissionChecker answers capability checks for the current actor.
// The dispatcher consults it before running any operation.
type PermissionChecker interface {
	// Can reports whether the current actor holds the capability.
	Can(capability string) bool
}

// CurrencyConverter converts between decimal amounts and integer minor units
// (cents, fils, yen). Implementations own the per-currency exponent rules.
type CurrencyConverter interface {
	// ToMinorUnits converts a decimal string like "19.99" to minor units.
	ToMinorUnits(amount string, currency string) (int64, error)

	// FromMinorUnits formats minor units back to a decimal string.
	FromMinorUnits(units int64, currency string) string
}

// AttachmentChecker validates media attachment references supplied on save.
type AttachmentChecker interface {
	// IsValid reports whether the id refers to a usable attachment.
	IsValid(id int64) bool
}

// NonceIssuer issues and verifies short-lived action nonces embedded in
// normalized field attributes.
type NonceIssuer interface {
	// Issue returns a nonce bound to the action.
	Issue(action string) string

	// Verify reports whether the nonce is currently valid for the action.
	Verify(action, nonce string) bool
}

// -----------------------------------------------------------------------------
// Rendering Ports
// -----------------------------------------------------------------------------

// Renderer turns a built panel into markup. Rendering is host territory;
// the library only guarantees the panel model it hands over.
type Renderer interface {
	// RenderPanel renders a complete panel.
	RenderPanel(p *panel.Panel) (string, error)
}
