// Package cli implements the dsupdate command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/dataware-update/internal/config"
	"github.com/fairyhunter13/dataware-update/internal/convert"
	"github.com/fairyhunter13/dataware-update/internal/obs"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	cfg     config.Config
}

// NewRootCommand builds the dsupdate command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "dsupdate",
		Short: "Convert and inspect dataware update records",
		Long: `dsupdate reads dataware update records (JSON objects describing a
create, read, update or delete of a catalog item) and renders them as JSON,
XML or YAML, validates them, or replays them into a catalog view.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			obs.InitLogger(cfg.Log.Level, cmd.ErrOrStderr())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "YAML config file")
	pf.String("to", config.FormatJSON, "output format: json, xml, raw-xml, yaml")
	pf.Bool("indent", false, "indent JSON output")
	pf.Bool("legacy-tag-gate", false, "read tags only when a meta key is present")
	pf.Bool("legacy-location-swap", false, "read loc.lon as latitude and loc.lat as longitude")
	pf.String("log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		newConvertCommand(a),
		newValidateCommand(a),
		newNewCommand(a),
		newSampleCommand(a),
		newReplayCommand(a),
	)
	return root
}

// Execute runs the command tree against os.Args and reports a failure on stderr.
func Execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

// converter builds a Converter from the loaded configuration.
func (a *app) converter() *convert.Converter {
	return convert.New(a.cfg)
}

func (a *app) writer(w io.Writer) *convert.Writer {
	return convert.NewWriter(w, a.cfg.Output.Format, a.cfg.Output.Indent)
}

// openInput returns stdin for "" or "-", otherwise the named file.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
