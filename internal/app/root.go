package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"msalign/internal/cli"
	"msalign/internal/config"
	"msalign/internal/logging"
	"msalign/internal/version"
)

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "msalign",
		Short: "Multiple sequence alignment with Clustal-Omega",
		Long: `msalign runs the Clustal-Omega aligner over FASTA input and reports the
alignment, the guide tree and (with --full) the distance matrix.

Settings come from flags, MSALIGN_* environment variables and
` + config.File() + `, in that order of precedence.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: e.setup,
	}
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)
	root.SetVersionTemplate(`{{printf "msalign version %s\n" .Version}}`)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usage(err) })

	cli.AddGlobalFlags(root.PersistentFlags(), &e.global)

	root.AddCommand(newAlignCmd(e))
	root.AddCommand(newBatchCmd(e))
	root.AddCommand(newVersionCmd(e))
	return root
}

// setup loads configuration for cmd and builds the logger.
func (e *env) setup(cmd *cobra.Command, _ []string) error {
	if err := config.Init(e.v, e.global.ConfigFile); err != nil {
		return usage(err)
	}
	for name, key := range cli.ConfigKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := e.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}
	cfg, err := config.Load(e.v)
	if err != nil {
		return usage(err)
	}
	e.cfg = cfg

	if cfg.Log.File != "" {
		l, err := logging.NewFile(cfg.Log.File, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return usage(err)
		}
		e.log = l
	} else {
		e.log = logging.New(e.stderr, cfg.Log.Level, cfg.Log.Format)
	}
	e.log.Debug("configuration loaded", "command", cmd.Name(), "config", e.v.ConfigFileUsed(), "binary", cfg.Binary)
	return nil
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the msalign version",
		Args:  cobra.NoArgs,
		// No configuration needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			e.ran = true
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "msalign version %s\n", version.Version)
			return err
		},
	}
}
