package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeOptions toggles compatibility with records produced by the legacy
// Java dataware, which read tags only when a meta key was present and stored
// loc.lon as the latitude and loc.lat as the longitude.
type DecodeOptions struct {
	LegacyTagGate      bool
	LegacyLocationSwap bool
}

// wireUpdate is the JSON and YAML layout of an Update.
type wireUpdate struct {
	Source string      `json:"source" yaml:"source"`
	Type   string      `json:"type" yaml:"type"`
	Tags   tagList     `json:"tags,omitzero" yaml:"tags,omitempty"`
	Mtime  int64       `json:"mtime" yaml:"mtime"`
	Loc    *Coordinate `json:"loc,omitempty" yaml:"loc,omitempty"`
	Action Action      `json:"action" yaml:"action"`
	Desc   string      `json:"desc" yaml:"desc"`
	Total  int64       `json:"total" yaml:"total"`
	Meta   metaMap     `json:"meta,omitzero" yaml:"meta,omitempty"`
}

// tagList and metaMap count as zero only when nil, so both encoders keep a
// set but empty container.
type (
	tagList []string
	metaMap map[string]string
)

func (l tagList) IsZero() bool { return l == nil }
func (m metaMap) IsZero() bool { return m == nil }

func (u *Update) wire() wireUpdate {
	return wireUpdate{
		Source: u.source,
		Type:   u.typ,
		Tags:   u.tags,
		Mtime:  u.mtime,
		Loc:    u.loc,
		Action: u.action,
		Desc:   u.desc,
		Total:  u.total,
		Meta:   u.meta,
	}
}

// ToJSON encodes the update as a JSON object. Unset tags, loc and meta are
// omitted. It only fails for non-finite coordinates.
func (u *Update) ToJSON() ([]byte, error) {
	b, err := json.Marshal(u.wire())
	if err != nil {
		return nil, fmt.Errorf("encode update: %w", err)
	}
	return b, nil
}

// MarshalJSON implements json.Marshaler.
func (u *Update) MarshalJSON() ([]byte, error) {
	return u.ToJSON()
}

// UnmarshalJSON implements json.Unmarshaler with default DecodeOptions.
func (u *Update) UnmarshalJSON(data []byte) error {
	decoded, err := FromJSON(data)
	if err != nil {
		return err
	}
	*u = *decoded
	return nil
}

// FromJSON decodes a JSON object into a new Update using default DecodeOptions.
func FromJSON(data []byte) (*Update, error) {
	return DecodeOptions{}.FromJSON(data)
}

// FromJSON decodes a JSON object into a new Update.
//
// source, type, action and mtime are mandatory. desc defaults to DefaultDesc
// and total to 0. A JSON null is treated like an absent key. Nothing is
// returned on failure.
func (o DecodeOptions) FromJSON(data []byte) (*Update, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &TypeMismatchError{Field: "$", Expected: "object"}
		}
		return nil, fmt.Errorf("decode update: %w", err)
	}
	if obj == nil {
		return nil, &TypeMismatchError{Field: "$", Expected: "object"}
	}
	return o.FromObject(obj)
}

// FromObject decodes an already split JSON object.
func (o DecodeOptions) FromObject(obj map[string]json.RawMessage) (*Update, error) {
	f := fields(obj)
	u := &Update{}
	var err error

	if u.source, err = f.requiredString("source"); err != nil {
		return nil, err
	}
	if u.typ, err = f.requiredString("type"); err != nil {
		return nil, err
	}
	action, err := f.requiredString("action")
	if err != nil {
		return nil, err
	}
	if u.action, err = ParseAction(action); err != nil {
		return nil, err
	}
	raw, ok := f.get("mtime")
	if !ok {
		return nil, &MissingFieldError{Field: "mtime"}
	}
	if u.mtime, err = decodeInt("mtime", raw); err != nil {
		return nil, err
	}

	u.desc = DefaultDesc
	if raw, ok := f.get("desc"); ok {
		if u.desc, err = decodeString("desc", raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := f.get("total"); ok {
		if u.total, err = decodeInt("total", raw); err != nil {
			return nil, err
		}
	}

	if err := o.decodeTags(f, u); err != nil {
		return nil, err
	}
	if raw, ok := f.get("meta"); ok {
		if u.meta, err = decodeMeta(raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := f.get("loc"); ok {
		if u.loc, err = o.decodeLocation(raw); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (o DecodeOptions) decodeTags(f fields, u *Update) error {
	raw, ok := f.get("tags")
	if o.LegacyTagGate {
		if _, hasMeta := f.get("meta"); !hasMeta {
			return nil
		}
		if !ok {
			return &MissingFieldError{Field: "tags"}
		}
	} else if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return &TypeMismatchError{Field: "tags", Expected: "array"}
	}
	tags := make([]string, 0, len(items))
	for i, item := range items {
		tag, err := decodeString(fmt.Sprintf("tags[%d]", i), item)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	u.tags = tags
	return nil
}

func decodeMeta(raw json.RawMessage) (map[string]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &TypeMismatchError{Field: "meta", Expected: "object"}
	}
	meta := make(map[string]string, len(obj))
	for k, v := range obj {
		s, err := decodeString("meta."+k, v)
		if err != nil {
			return nil, err
		}
		meta[k] = s
	}
	return meta, nil
}

func (o DecodeOptions) decodeLocation(raw json.RawMessage) (*Coordinate, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &TypeMismatchError{Field: "loc", Expected: "object"}
	}
	f := fields(obj)
	lat, err := f.requiredFloat("loc.lat", "lat")
	if err != nil {
		return nil, err
	}
	lon, err := f.requiredFloat("loc.lon", "lon")
	if err != nil {
		return nil, err
	}
	if o.LegacyLocationSwap {
		lat, lon = lon, lat
	}
	return &Coordinate{Lat: lat, Lon: lon}, nil
}

// fields looks up keys of a JSON object, treating null as absent.
type fields map[string]json.RawMessage

func (f fields) get(key string) (json.RawMessage, bool) {
	v, ok := f[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

func (f fields) requiredString(key string) (string, error) {
	v, ok := f.get(key)
	if !ok {
		return "", &MissingFieldError{Field: key}
	}
	return decodeString(key, v)
}

func (f fields) requiredFloat(name, key string) (float64, error) {
	v, ok := f.get(key)
	if !ok {
		return 0, &MissingFieldError{Field: name}
	}
	var n float64
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, &TypeMismatchError{Field: name, Expected: "number"}
	}
	return n, nil
}

func decodeString(field string, v json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", &TypeMismatchError{Field: field, Expected: "string"}
	}
	return s, nil
}

func decodeInt(field string, v json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, &TypeMismatchError{Field: field, Expected: "integer"}
	}
	return n, nil
}
