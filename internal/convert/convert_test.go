package convert

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/dataware-update/internal/config"
	"github.com/fairyhunter13/dataware-update/internal/model"
)

const (
	recA = `{"source":"a","type":"t","action":"create","mtime":1}`
	recB = `{"source":"b","type":"t","action":"delete","mtime":2,"tags":["x"]}`
	bad  = `{"source":"c","type":"t","action":"create"}`
)

func run(t *testing.T, c *Converter, in string) (Stats, string, error) {
	t.Helper()
	var out bytes.Buffer
	st, err := c.Run(context.Background(), strings.NewReader(in), &out)
	return st, out.String(), err
}

func TestRunInputShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"ndjson", recA + "\n" + recB + "\n"},
		{"concatenated", recA + recB},
		{"array", "  [" + recA + ",\n" + recB + "]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Converter{Format: config.FormatXML}
			st, out, err := run(t, c, tt.in)
			require.NoError(t, err)
			assert.Equal(t, Stats{Read: 2, Written: 2}, st)
			lines := strings.Split(strings.TrimSpace(out), "\n")
			require.Len(t, lines, 2)
			assert.Contains(t, lines[0], "<source>a</source>")
			assert.Contains(t, lines[1], "<tag>x</tag>")
		})
	}
}

func TestRunSingleObjectAndEmptyInput(t *testing.T) {
	c := &Converter{Format: config.FormatJSON}
	st, out, err := run(t, c, recA)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Written)
	assert.JSONEq(t, `{"source":"a","type":"t","action":"create","mtime":1,"desc":"no description","total":0}`, out)

	st, out, err = run(t, c, " \n ")
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)
	assert.Empty(t, out)

	st, _, err = run(t, c, "[]")
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)
}

func TestRunStopsOnFirstInvalidRecord(t *testing.T) {
	c := &Converter{Format: config.FormatJSON}
	st, out, err := run(t, c, recA+bad+recB)

	var rerr *RecordError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Index)
	assert.ErrorIs(t, err, model.ErrMissingField)
	assert.Equal(t, Stats{Read: 2, Written: 1, Rejected: 1}, st)
	assert.Contains(t, out, `"source":"a"`)
}

func TestRunContinueOnError(t *testing.T) {
	c := &Converter{Format: config.FormatRawXML, ContinueOnError: true}
	st, out, err := run(t, c, "["+recA+","+bad+","+recB+"]")
	require.NoError(t, err)
	assert.Equal(t, Stats{Read: 3, Written: 2, Rejected: 1}, st)
	assert.Equal(t, 2, strings.Count(out, "<DSUpdate>"))
}

func TestRunSyntaxErrorIsFatal(t *testing.T) {
	c := &Converter{Format: config.FormatJSON, ContinueOnError: true}
	_, _, err := run(t, c, recA+`{"source":`)
	require.Error(t, err)

	_, _, err = run(t, c, "["+recA)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRunTrailingDataAfterArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"record after array", "[" + recA + "]\n" + recB},
		{"garbage after array", "[" + recA + "] garbage"},
		{"second array", "[" + recA + "][" + recB + "]"},
		{"stray bracket", "[" + recA + "]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Converter{Format: config.FormatJSON, ContinueOnError: true}
			st, out, err := run(t, c, tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unexpected data after array")
			assert.Equal(t, 1, st.Written)
			assert.Contains(t, out, `"source":"a"`)
		})
	}

	c := &Converter{Format: config.FormatJSON}
	st, _, err := run(t, c, "["+recA+"]  \n\t")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Written)
}

func TestRunYAMLSeparatesDocuments(t *testing.T) {
	c := &Converter{Format: config.FormatYAML}
	_, out, err := run(t, c, recA+recB)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "---\n"))
	assert.Contains(t, out, "source: b")
}

func TestRunHonoursDecodeOptions(t *testing.T) {
	in := `{"source":"a","type":"t","action":"create","mtime":1,"loc":{"lat":1,"lon":2}}`
	c := New(config.Config{
		Output: config.OutputConfig{Format: config.FormatXML},
		Decode: config.DecodeConfig{LegacyLocationSwap: true},
	})
	_, out, err := run(t, c, in)
	require.NoError(t, err)
	assert.Contains(t, out, "<loc><lon>1</lon><lat>2</lat></loc>")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Converter{Format: config.FormatJSON}
	_, err := c.Run(ctx, strings.NewReader(recA), io.Discard)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRenderIndentAndUnknownFormat(t *testing.T) {
	u := model.NewCreate("s", "t")
	b, err := Render(u, config.FormatJSON, true)
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n  \"source\": \"s\"")

	_, err = Render(u, "csv", false)
	require.Error(t, err)
}
