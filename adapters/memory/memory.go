// Package memory provides in-process implementations of the host
// ports, suitable for tests and single-binary deployments.
package memory

import "sync"

// Permissions is a grant-set permission checker.
type Permissions struct {
	mu     sync.RWMutex
	grants map[string]bool
	all    bool
}

// NewPermissions creates a checker granting exactly the listed
// capabilities.
func NewPermissions(capabilities ...string) *Permissions {
	p := &Permissions{grants: make(map[string]bool, len(capabilities))}
	for _, c := range capabilities {
		p.grants[c] = true
	}
	return p
}

// AllowAll creates a checker that grants every capability.
func AllowAll() *Permissions {
	return &Permissions{grants: map[string]bool{}, all: true}
}

// Can reports whether the capability is granted.
func (p *Permissions) Can(capability string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.all || p.grants[capability]
}

// Grant adds a capability.
func (p *Permissions) Grant(capability string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grants[capability] = true
}

// Revoke removes a capability. Revoking has no effect on an allow-all
// checker.
func (p *Permissions) Revoke(capability string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.grants, capability)
}

// Attachments is a set-backed attachment checker.
type Attachments struct {
	mu  sync.RWMutex
	ids map[int64]bool
}

// NewAttachments creates a checker accepting exactly the listed ids.
func NewAttachments(ids ...int64) *Attachments {
	a := &Attachments{ids: make(map[int64]bool, len(ids))}
	for _, id := range ids {
		a.ids[id] = true
	}
	return a
}

// IsValid reports whether the id names a known attachment.
func (a *Attachments) IsValid(id int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ids[id]
}

// Add registers an attachment id.
func (a *Attachments) Add(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ids[id] = true
}

// Remove forgets an attachment id.
func (a *Attachments) Remove(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.ids, id)
}
