package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToXMLMinimal(t *testing.T) {
	u, err := New("geo", "t", "create")
	require.NoError(t, err)
	u.SetMtime(5).SetTotal(0)

	want := "<DSUpdate><source>geo</source><type>t</type><desc>no description</desc>" +
		"<action>create</action><mtime>5</mtime><total>0</total></DSUpdate>"
	assert.Equal(t, want, u.ToXML())
	assert.Equal(t, want, u.ToRawXML())
}

func TestToXMLFull(t *testing.T) {
	u := NewCreate("geo", "places").
		SetMtime(9).
		SetDesc("moved").
		SetTotal(2).
		SetLocation(51.5, -0.125).
		AddTag("a").
		AddTag("b").
		AddMetadata("owner", "x").
		AddMetadataInt("count", 5)

	want := "<DSUpdate><source>geo</source><type>places</type><desc>moved</desc>" +
		"<action>create</action><mtime>9</mtime><total>2</total>" +
		"<loc><lon>-0.125</lon><lat>51.5</lat></loc>" +
		"<tag>a</tag><tag>b</tag>" +
		"<meta><count>5</count><owner>x</owner></meta></DSUpdate>"
	assert.Equal(t, want, u.ToXML())
}

func TestToXMLMetadataInt(t *testing.T) {
	u := NewCreate("s", "t").AddMetadataInt("count", 5)
	assert.Contains(t, u.ToXML(), "<meta><count>5</count></meta>")
}

func TestToXMLEscapesText(t *testing.T) {
	u := NewCreate("s", "t").
		SetDesc("a < b & c").
		AddTag("x>y").
		AddMetadata("note", "fish & chips")

	escaped := u.ToXML()
	assert.Contains(t, escaped, "<desc>a &lt; b &amp; c</desc>")
	assert.Contains(t, escaped, "<tag>x&gt;y</tag>")
	assert.Contains(t, escaped, "<note>fish &amp; chips</note>")

	raw := u.ToRawXML()
	assert.Contains(t, raw, "<desc>a < b & c</desc>")
	assert.Contains(t, raw, "<note>fish & chips</note>")
}

func TestValidateMetaKeys(t *testing.T) {
	u := NewCreate("s", "t")
	assert.NoError(t, u.ValidateMetaKeys())

	u.AddMetadata("count", "1").AddMetadata("geo:lat", "2").AddMetadata("_x-1.2", "3")
	assert.NoError(t, u.ValidateMetaKeys())

	u.AddMetadata("1st", "x").AddMetadata("has space", "y").AddMetadata("xmlns", "z").AddMetadata("", "e")
	err := u.ValidateMetaKeys()
	var invalid *InvalidMetaKeyError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"", "1st", "has space", "xmlns"}, invalid.Keys)
	assert.Contains(t, err.Error(), `"has space"`)
}

func TestToYAML(t *testing.T) {
	u := NewCreate("geo", "t").SetMtime(5).AddTag("a")
	b, err := u.ToYAML()
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "source: geo\n")
	assert.Contains(t, out, "tags:\n    - a\n")
	assert.Contains(t, out, "mtime: 5\n")
	assert.NotContains(t, out, "meta:")
	assert.NotContains(t, out, "loc:")
}

func TestToYAMLKeepsEmptyContainers(t *testing.T) {
	u, err := FromJSON([]byte(`{"source":"s","type":"t","action":"create","mtime":1,"tags":[],"meta":{}}`))
	require.NoError(t, err)

	b, err := u.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(b), "tags: []\n")
	assert.Contains(t, string(b), "meta: {}\n")

	j, err := u.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(j), `"tags":[]`)
	assert.Contains(t, string(j), `"meta":{}`)
}
