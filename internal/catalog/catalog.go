// Package catalog replays update records into an in-memory view of the
// items they describe.
package catalog

import (
	"cmp"
	"slices"

	"github.com/fairyhunter13/dataware-update/internal/model"
)

// Key identifies a catalog item.
type Key struct {
	Source string `json:"source"`
	Type   string `json:"type"`
}

// Outcome describes what Apply did with an update.
type Outcome int

const (
	Ignored Outcome = iota
	Created
	Updated
	Deleted
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	case Stale:
		return "stale"
	}
	return "ignored"
}

type entry struct {
	u       *model.Update
	deleted bool
}

// Catalog holds the latest update per (source, type). Deleted keys keep a
// tombstone so that older creates arriving later stay stale.
//
// A Catalog is not safe for concurrent use.
type Catalog struct {
	applied int
	reads   int
	m       map[Key]entry
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{m: make(map[Key]entry)}
}

// Apply folds u into the catalog. An update older than the held one (by
// mtime, then arrival order) is stale; arrival order always increases, so
// equal mtimes resolve to the later update.
func (c *Catalog) Apply(u *model.Update) Outcome {
	c.applied++
	if u.Action() == model.ActionRead {
		c.reads++
		return Ignored
	}
	k := Key{Source: u.Source(), Type: u.Type()}
	held, ok := c.m[k]
	if ok && u.Mtime() < held.u.Mtime() {
		return Stale
	}

	switch u.Action() {
	case model.ActionDelete:
		c.m[k] = entry{u: u, deleted: true}
		if !ok || held.deleted {
			return Ignored
		}
		return Deleted
	default:
		c.m[k] = entry{u: u}
		if !ok || held.deleted {
			return Created
		}
		return Updated
	}
}

// Get returns the live update for (source, typ).
func (c *Catalog) Get(source, typ string) (*model.Update, bool) {
	e, ok := c.m[Key{Source: source, Type: typ}]
	if !ok || e.deleted {
		return nil, false
	}
	return e.u, true
}

// List returns live updates ordered by source, then type.
func (c *Catalog) List() []*model.Update {
	keys := make([]Key, 0, len(c.m))
	for k, e := range c.m {
		if !e.deleted {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Type, b.Type))
	})
	out := make([]*model.Update, len(keys))
	for i, k := range keys {
		out[i] = c.m[k].u
	}
	return out
}

// Len returns the number of live items.
func (c *Catalog) Len() int {
	n := 0
	for _, e := range c.m {
		if !e.deleted {
			n++
		}
	}
	return n
}

// Applied returns how many updates were passed to Apply.
func (c *Catalog) Applied() int { return c.applied }

// Reads returns how many read actions were seen.
func (c *Catalog) Reads() int { return c.reads }
