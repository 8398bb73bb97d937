package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/dataware-update/internal/model"
)

type newOptions struct {
	source string
	typ    string
	action string
	mtime  int64
	desc   string
	total  int64
	tags   []string
	meta   []string
	lat    float64
	lon    float64
}

func newNewCommand(a *app) *cobra.Command {
	var o newOptions
	cmd := &cobra.Command{
		Use:     "new",
		Short:   "Build a single update record from flags",
		Example: `  dsupdate new --source geo --action update --tag poi --meta count=5 --lat 51.5 --lon -0.12 --to xml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.typ == "" {
				o.typ = a.cfg.Defaults.Type
			}
			u, err := o.build(cmd, a.cfg.Output.Format)
			if err != nil {
				return err
			}
			w := a.writer(cmd.OutOrStdout())
			if err := w.Write(u); err != nil {
				return err
			}
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.source, "source", "", "namespace of the originating data source")
	f.StringVar(&o.typ, "type", "", "item-type namespace (default from config defaults.type)")
	f.StringVar(&o.action, "action", string(model.ActionCreate), "create, read, update or delete")
	f.Int64Var(&o.mtime, "mtime", 0, "epoch seconds the update was generated (default now)")
	f.StringVar(&o.desc, "desc", model.DefaultDesc, "short textual summary")
	f.Int64Var(&o.total, "total", 0, "total number of items of this type")
	f.StringArrayVar(&o.tags, "tag", nil, "category namespace, repeatable")
	f.StringArrayVar(&o.meta, "meta", nil, "key=value metadata, repeatable")
	f.Float64Var(&o.lat, "lat", 0, "WGS-84 latitude")
	f.Float64Var(&o.lon, "lon", 0, "WGS-84 longitude")
	_ = cmd.MarkFlagRequired("source")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	return cmd
}

func (o newOptions) build(cmd *cobra.Command, format string) (*model.Update, error) {
	u, err := model.New(o.source, o.typ, o.action)
	if err != nil {
		return nil, err
	}
	mtime := o.mtime
	if !cmd.Flags().Changed("mtime") {
		mtime = time.Now().Unix()
	}
	u.SetMtime(mtime).SetDesc(o.desc).SetTotal(o.total)
	for _, tag := range o.tags {
		u.AddTag(tag)
	}
	for _, kv := range o.meta {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--meta %q: expected key=value", kv)
		}
		u.AddMetadata(k, v)
	}
	if cmd.Flags().Changed("lat") {
		u.SetLocation(o.lat, o.lon)
	}
	if err := u.ValidateMetaKeys(); err != nil && strings.HasSuffix(format, "xml") {
		return nil, errors.Join(errors.New("metadata keys cannot be rendered as XML"), err)
	}
	return u, nil
}
