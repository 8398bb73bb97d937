package model

import (
	"encoding/xml"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ToXML renders the update as a <DSUpdate> document with element order
// source, type, desc, action, mtime, total, loc, tag..., meta.
//
// Text content is escaped. Metadata keys become element names verbatim, so a
// key that is not an XML name yields malformed output; see ValidateMetaKeys.
// Metadata children are sorted by key.
func (u *Update) ToXML() string {
	return u.renderXML(escapeText)
}

// ToRawXML renders the same document as ToXML without escaping any text,
// matching the byte output of the legacy dataware.
func (u *Update) ToRawXML() string {
	return u.renderXML(func(b *strings.Builder, s string) { b.WriteString(s) })
}

func (u *Update) renderXML(text func(*strings.Builder, string)) string {
	var b strings.Builder
	elem := func(name, value string) {
		b.WriteString("<" + name + ">")
		text(&b, value)
		b.WriteString("</" + name + ">")
	}

	b.WriteString("<DSUpdate>")
	elem("source", u.source)
	elem("type", u.typ)
	elem("desc", u.desc)
	elem("action", string(u.action))
	elem("mtime", strconv.FormatInt(u.mtime, 10))
	elem("total", strconv.FormatInt(u.total, 10))
	if u.loc != nil {
		b.WriteString("<loc>")
		elem("lon", formatFloat(u.loc.Lon))
		elem("lat", formatFloat(u.loc.Lat))
		b.WriteString("</loc>")
	}
	for _, tag := range u.tags {
		elem("tag", tag)
	}
	if u.meta != nil {
		b.WriteString("<meta>")
		for _, k := range slices.Sorted(maps.Keys(u.meta)) {
			elem(k, u.meta[k])
		}
		b.WriteString("</meta>")
	}
	b.WriteString("</DSUpdate>")
	return b.String()
}

// ValidateMetaKeys returns an *InvalidMetaKeyError when any metadata key
// cannot be used as an XML element name.
func (u *Update) ValidateMetaKeys() error {
	var bad []string
	for k := range u.meta {
		if !isXMLName(k) {
			bad = append(bad, k)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	slices.Sort(bad)
	return &InvalidMetaKeyError{Keys: bad}
}

func escapeText(b *strings.Builder, s string) {
	// strings.Builder never fails to write.
	_ = xml.EscapeText(b, []byte(s))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// isXMLName approximates the XML Name production, rejecting the reserved
// "xml" prefix.
func isXMLName(s string) bool {
	if s == "" || strings.HasPrefix(strings.ToLower(s), "xml") {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsLetter(first) && first != '_' {
		return false
	}
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == '_', r == '-', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
