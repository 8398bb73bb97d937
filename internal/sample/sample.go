// Package sample generates random but valid update records for seeding and tests.
package sample

import (
	"strings"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/fairyhunter13/dataware-update/internal/model"
)

var actions = []model.Action{
	model.ActionCreate,
	model.ActionRead,
	model.ActionUpdate,
	model.ActionDelete,
}

// Generator produces a deterministic sequence of updates for a given seed.
type Generator struct {
	f       *gofakeit.Faker
	sources []string
	types   []string
}

// New returns a Generator seeded with seed. Records are drawn from a small
// pool of sources and types so that replays hit the same catalog keys.
func New(seed int64) *Generator {
	f := gofakeit.New(seed)
	g := &Generator{f: f}
	for i := 0; i < 3; i++ {
		g.sources = append(g.sources, "dataware:"+elementName(f.DomainName()))
		g.types = append(g.types, elementName(f.Noun())+":item")
	}
	return g
}

// Next returns a new random update.
func (g *Generator) Next() *model.Update {
	f := g.f
	u := model.NewWithAction(
		g.sources[f.Number(0, len(g.sources)-1)],
		g.types[f.Number(0, len(g.types)-1)],
		actions[f.Number(0, len(actions)-1)],
	)
	u.SetMtime(f.Date().Unix()).
		SetDesc(f.Sentence(f.Number(2, 8))).
		SetTotal(int64(f.Number(0, 10000)))

	if f.Bool() {
		u.SetLocation(f.Latitude(), f.Longitude())
	}
	for i, n := 0, f.Number(0, 3); i < n; i++ {
		u.AddTag(f.Noun())
	}
	for i, n := 0, f.Number(0, 3); i < n; i++ {
		u.AddMetadata(elementName(f.Noun()), f.Word())
	}
	if f.Bool() {
		u.AddMetadataInt("count", f.Number(0, 500))
	}
	return u
}

// elementName strips everything but ASCII letters so the result is usable as
// an XML element name.
func elementName(s string) string {
	name := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
	if name == "" || strings.HasPrefix(name, "xml") {
		return "key" + name
	}
	return name
}
