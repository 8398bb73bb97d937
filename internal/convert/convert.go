// Package convert streams JSON update records into the configured output format.
package convert

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fairyhunter13/dataware-update/internal/config"
	"github.com/fairyhunter13/dataware-update/internal/model"
	"github.com/fairyhunter13/dataware-update/internal/obs"
)

// RecordError ties a decode failure to the zero-based position of the record
// in the input stream.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Stats counts what a run did.
type Stats struct {
	Read     int `json:"read"`
	Written  int `json:"written"`
	Rejected int `json:"rejected"`
}

// Converter decodes a stream of update objects and renders each one.
//
// The input may be a single object, a JSON array of objects, or objects
// concatenated with optional whitespace between them (NDJSON).
type Converter struct {
	Format          string
	Indent          bool
	Decode          model.DecodeOptions
	ContinueOnError bool
	// OnReject, when set, sees every record skipped under ContinueOnError.
	OnReject func(*RecordError)
}

// New builds a Converter from the loaded configuration.
func New(cfg config.Config) *Converter {
	return &Converter{
		Format: cfg.Output.Format,
		Indent: cfg.Output.Indent,
		Decode: model.DecodeOptions{
			LegacyTagGate:      cfg.Decode.LegacyTagGate,
			LegacyLocationSwap: cfg.Decode.LegacyLocationSwap,
		},
	}
}

// Run converts every record from r and writes it to w.
func (c *Converter) Run(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	out := NewWriter(w, c.Format, c.Indent)
	st, err := c.Each(ctx, r, func(_ int, u *model.Update) error {
		return out.Write(u)
	})
	if ferr := out.Flush(); err == nil && ferr != nil {
		err = ferr
	}
	return st, err
}

// Each decodes the records of r in order and hands every valid one to fn.
// fn receives the zero-based position of the record in the stream.
// An error returned by fn stops the run.
func (c *Converter) Each(ctx context.Context, r io.Reader, fn func(i int, u *model.Update) error) (Stats, error) {
	log := obs.Logger.With("batch_id", uuid.NewString())
	var st Stats

	next, err := records(r)
	if err != nil {
		return st, err
	}
	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		raw, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error("stream_read_failed", "index", index, "error", err)
			return st, fmt.Errorf("read record %d: %w", index, err)
		}
		st.Read++

		u, err := c.Decode.FromJSON(raw)
		if err != nil {
			st.Rejected++
			rerr := &RecordError{Index: index, Err: err}
			if !c.ContinueOnError {
				log.Error("record_rejected", "index", index, "error", err)
				return st, rerr
			}
			log.Warn("record_rejected", "index", index, "error", err)
			if c.OnReject != nil {
				c.OnReject(rerr)
			}
			continue
		}
		if err := fn(index, u); err != nil {
			return st, fmt.Errorf("record %d: %w", index, err)
		}
		st.Written++
		log.Debug("record_converted",
			"index", index,
			"source", u.Source(),
			"type", u.Type(),
			"action", string(u.Action()),
			"mtime", u.Mtime(),
		)
	}
	log.Info("batch_complete", slog.Int("read", st.Read), slog.Int("written", st.Written), slog.Int("rejected", st.Rejected))
	return st, nil
}

// Render encodes u in format, terminated by a newline.
func Render(u *model.Update, format string, indent bool) ([]byte, error) {
	switch format {
	case config.FormatJSON:
		b, err := u.ToJSON()
		if err != nil {
			return nil, err
		}
		if indent {
			var buf bytes.Buffer
			if err := json.Indent(&buf, b, "", "  "); err != nil {
				return nil, err
			}
			b = buf.Bytes()
		}
		return append(b, '\n'), nil
	case config.FormatXML:
		return []byte(u.ToXML() + "\n"), nil
	case config.FormatRawXML:
		return []byte(u.ToRawXML() + "\n"), nil
	case config.FormatYAML:
		return u.ToYAML()
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// Writer renders a sequence of updates in one output format. YAML documents
// are separated by "---"; the other formats write one record per line.
type Writer struct {
	w      *bufio.Writer
	format string
	indent bool
	n      int
}

// NewWriter returns a Writer rendering into w.
func NewWriter(w io.Writer, format string, indent bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), format: format, indent: indent}
}

// Write renders u. Output is buffered until Flush.
func (w *Writer) Write(u *model.Update) error {
	b, err := Render(u, w.format, w.indent)
	if err != nil {
		return err
	}
	if w.format == config.FormatYAML && w.n > 0 {
		if _, err := w.w.WriteString("---\n"); err != nil {
			return err
		}
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	w.n++
	return nil
}

// Flush writes any buffered output.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// records returns an iterator over the raw JSON values of r. It yields io.EOF
// once the input is exhausted.
func records(r io.Reader) (func() (json.RawMessage, error), error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return func() (json.RawMessage, error) { return nil, io.EOF }, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	dec := json.NewDecoder(br)
	if first != '[' {
		return func() (json.RawMessage, error) {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, err
			}
			return raw, nil
		}, nil
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	done := false
	return func() (json.RawMessage, error) {
		if done {
			return nil, io.EOF
		}
		if !dec.More() {
			done = true
			if _, err := dec.Token(); err != nil {
				if errors.Is(err, io.EOF) {
					return nil, io.ErrUnexpectedEOF
				}
				return nil, err
			}
			if _, err := dec.Token(); !errors.Is(err, io.EOF) {
				return nil, errors.New("unexpected data after array")
			}
			return nil, io.EOF
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		return raw, nil
	}, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}
