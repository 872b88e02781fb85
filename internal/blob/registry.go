// Package blob holds in-memory audio payloads behind revocable locators.
package blob

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Scheme prefixes every locator minted by a Registry. Locators without it
// did not originate in this process and are never revocable here.
const Scheme = "blob:voxpad/"

// Owner tags who currently holds a resource.
type Owner int

const (
	OwnerSession Owner = iota
	OwnerHistory
)

// Resource wraps one binary payload. Consumers pass its locator around;
// only the upload path reads the raw bytes back out.
type Resource struct {
	locator  string
	mimeType string
	data     []byte
}

func (r *Resource) Locator() string  { return r.locator }
func (r *Resource) MIMEType() string { return r.mimeType }
func (r *Resource) Size() int64      { return int64(len(r.data)) }

// Bytes returns the payload without copying. Callers must not mutate it.
func (r *Resource) Bytes() []byte { return r.data }

type entry struct {
	res   *Resource
	owner Owner
}

// Registry is the process-wide table of live resources.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Create registers a payload and returns its resource, tagged
// session-owned until transferred into history.
func (g *Registry) Create(data []byte, mimeType string) *Resource {
	res := &Resource{
		locator:  Scheme + uuid.NewString(),
		mimeType: mimeType,
		data:     data,
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[res.locator] = &entry{res: res, owner: OwnerSession}
	return res
}

// Resolve looks up a live resource by locator.
func (g *Registry) Resolve(locator string) (*Resource, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[locator]
	if !ok {
		return nil, false
	}
	return e.res, true
}

// Owner reports the current owner tag of a live resource.
func (g *Registry) Owner(locator string) (Owner, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[locator]
	if !ok {
		return 0, false
	}
	return e.owner, true
}

// Retag transfers ownership without duplicating the resource.
func (g *Registry) Retag(locator string, owner Owner) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[locator]
	if !ok {
		return false
	}
	e.owner = owner
	return true
}

// Revoke releases a resource. Revoked locators no longer resolve.
func (g *Registry) Revoke(locator string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.entries[locator]; !ok {
		return false
	}
	delete(g.entries, locator)
	return true
}

// Len reports how many resources are live.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// IsLocal reports whether a locator was minted by this process's scheme
// and is therefore eligible for revocation.
func IsLocal(locator string) bool {
	return strings.HasPrefix(locator, Scheme)
}
