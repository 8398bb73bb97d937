// Package model defines the dataware update record and its wire formats.
package model

import "strconv"

const (
	// DefaultType is the item-type namespace used when none is given.
	DefaultType = "dataware:update"
	// DefaultDesc is the description of a record that never had one set.
	DefaultDesc = "no description"
)

// Action is the CRUD action an update reports.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Valid reports whether a is one of the four CRUD actions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// ParseAction converts s into an Action, rejecting anything outside the CRUD set.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", &InvalidActionError{Action: s}
	}
	return a, nil
}

// Coordinate is a WGS-84 position. No range checks are applied.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Update describes one change to an item in a dataware catalog.
//
// Tags, metadata and location stay nil until first populated, so callers can
// tell an unset container from an empty one. Mutators return the receiver for
// chaining and never copy their arguments. An Update is not safe for
// concurrent mutation.
type Update struct {
	source string
	typ    string
	tags   []string
	mtime  int64
	loc    *Coordinate
	action Action
	desc   string
	total  int64
	meta   map[string]string
}

// New builds an update for the given source, type and action.
// An empty type falls back to DefaultType.
func New(source, typ, action string) (*Update, error) {
	a, err := ParseAction(action)
	if err != nil {
		return nil, err
	}
	u := NewCreate(source, typ)
	u.action = a
	return u, nil
}

// NewWithAction builds an update for an already typed action. Values outside
// the CRUD set fall back to ActionCreate.
func NewWithAction(source, typ string, action Action) *Update {
	u := NewCreate(source, typ)
	if action.Valid() {
		u.action = action
	}
	return u
}

// NewCreate builds an update whose action is create.
func NewCreate(source, typ string) *Update {
	if typ == "" {
		typ = DefaultType
	}
	return &Update{
		source: source,
		typ:    typ,
		action: ActionCreate,
		desc:   DefaultDesc,
	}
}

func (u *Update) Source() string              { return u.source }
func (u *Update) Type() string                { return u.typ }
func (u *Update) Action() Action              { return u.action }
func (u *Update) Tags() []string              { return u.tags }
func (u *Update) Mtime() int64                { return u.mtime }
func (u *Update) Location() *Coordinate       { return u.loc }
func (u *Update) Desc() string                { return u.desc }
func (u *Update) Total() int64                { return u.total }
func (u *Update) Metadata() map[string]string { return u.meta }

func (u *Update) SetSource(source string) *Update { u.source = source; return u }
func (u *Update) SetType(typ string) *Update      { u.typ = typ; return u }
func (u *Update) SetTags(tags []string) *Update   { u.tags = tags; return u }
func (u *Update) SetMtime(mtime int64) *Update    { u.mtime = mtime; return u }
func (u *Update) SetDesc(desc string) *Update     { u.desc = desc; return u }
func (u *Update) SetTotal(total int64) *Update    { u.total = total; return u }

// SetLocation attaches a coordinate built from lat and lon.
func (u *Update) SetLocation(lat, lon float64) *Update {
	u.loc = &Coordinate{Lat: lat, Lon: lon}
	return u
}

// SetCoordinate attaches c as the location; nil clears it.
func (u *Update) SetCoordinate(c *Coordinate) *Update {
	u.loc = c
	return u
}

// SetAction replaces the action. The record is left untouched on error.
func (u *Update) SetAction(action string) error {
	a, err := ParseAction(action)
	if err != nil {
		return err
	}
	u.action = a
	return nil
}

// AddTag appends tag, creating the tag list on first use. Duplicates are kept.
func (u *Update) AddTag(tag string) *Update {
	u.tags = append(u.tags, tag)
	return u
}

// AddMetadata sets key to value, creating the metadata map on first use.
func (u *Update) AddMetadata(key, value string) *Update {
	if u.meta == nil {
		u.meta = make(map[string]string)
	}
	u.meta[key] = value
	return u
}

// AddMetadataInt stores the decimal form of value under key.
func (u *Update) AddMetadataInt(key string, value int) *Update {
	return u.AddMetadata(key, strconv.Itoa(value))
}

// String returns the JSON form of the update.
func (u *Update) String() string {
	b, err := u.ToJSON()
	if err != nil {
		return "<invalid update: " + err.Error() + ">"
	}
	return string(b)
}
