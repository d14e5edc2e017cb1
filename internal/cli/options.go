// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/spf13/pflag"

	"msalign/core/seq"
)

// ConfigKeys maps flag names to the config keys they override. Flags listed
// here are bound to viper, so their effective value comes from config.Load.
var ConfigKeys = map[string]string{
	"bin":        "binary",
	"temp-dir":   "temp_dir",
	"timeout":    "timeout",
	"threads":    "threads",
	"full":       "full_matrix",
	"format":     "output.format",
	"order":      "output.order",
	"wrap":       "output.wrap",
	"color":      "output.color",
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file",
}

// GlobalOptions are the persistent flags of the root command.
type GlobalOptions struct {
	ConfigFile string
	Quiet      bool
}

// AlignOptions are the arguments of `msalign align` that are not config
// backed.
type AlignOptions struct {
	Input        string
	Output       string // "-" = stdout
	SeqType      string // auto | dna | protein
	DistmatIn    string
	DistmatOut   string
	GuidetreeIn  string
	GuidetreeOut string
}

// BatchOptions are the arguments of `msalign batch`.
type BatchOptions struct {
	Inputs  []string
	SeqType string
	Jobs    int
	OutDir  string
	Sort    bool
}

// AddGlobalFlags registers the persistent flags.
func AddGlobalFlags(fs *pflag.FlagSet, o *GlobalOptions) {
	fs.StringVarP(&o.ConfigFile, "config", "c", "", "config file (default $XDG_CONFIG_HOME/msalign/config.yaml)")
	fs.BoolVarP(&o.Quiet, "quiet", "q", false, "suppress warnings")
	fs.String("log-level", "warn", "log level: debug | info | warn | error")
	fs.String("log-format", "text", "log format: text | json")
	fs.String("log-file", "", "append logs to this file instead of stderr")
}

// AddRunFlags registers the config-backed flags shared by align and batch.
func AddRunFlags(fs *pflag.FlagSet) {
	fs.String("bin", "clustalo", "clustalo executable")
	fs.String("temp-dir", "", "parent directory for temporary files")
	fs.Duration("timeout", 0, "abort a run after this long (0 = no limit)")
	fs.Int("threads", 0, "threads for clustalo (0 = tool default)")
	fs.Bool("full", false, "compute the full distance matrix instead of mbed")
	fs.StringP("format", "f", "fasta", "output format: fasta | text | json | jsonl | yaml")
	fs.String("order", "input", "row order: input | tree")
	fs.Int("wrap", 60, "alignment columns per line (0 = no wrapping)")
	fs.Bool("color", false, "colour conserved columns in text output")
}

// AddAlignFlags registers the align-only flags.
func AddAlignFlags(fs *pflag.FlagSet, o *AlignOptions) {
	fs.StringVarP(&o.Input, "in", "i", "", "input FASTA file or '-' for stdin [*]")
	fs.StringVarP(&o.Output, "out", "o", "-", "output file or '-' for stdout")
	fs.StringVar(&o.SeqType, "seqtype", "auto", "sequence type: auto | dna | protein")
	fs.StringVar(&o.DistmatIn, "distmat-in", "", "read a precomputed distance matrix")
	fs.StringVar(&o.DistmatOut, "distmat-out", "", "write the distance matrix (implies --full)")
	fs.StringVar(&o.GuidetreeIn, "guidetree-in", "", "read a precomputed Newick guide tree")
	fs.StringVar(&o.GuidetreeOut, "guidetree-out", "", "write the guide tree")
}

// AddBatchFlags registers the batch-only flags.
func AddBatchFlags(fs *pflag.FlagSet, o *BatchOptions) {
	fs.StringVar(&o.SeqType, "seqtype", "auto", "sequence type: auto | dna | protein")
	fs.IntVarP(&o.Jobs, "jobs", "j", runtime.NumCPU(), "alignments to run concurrently")
	fs.StringVar(&o.OutDir, "out-dir", "", "write one result file per input here instead of stdout")
	fs.BoolVar(&o.Sort, "sort", false, "write stdout results in input-path order")
}

// Validate checks align arguments.
func (o *AlignOptions) Validate() error {
	if o.Input == "" {
		return errors.New("--in is required")
	}
	if _, err := seq.ParseKind(o.SeqType); err != nil {
		return err
	}
	if o.GuidetreeIn != "" && o.GuidetreeOut != "" {
		return errors.New("--guidetree-in conflicts with --guidetree-out")
	}
	return nil
}

// Validate checks batch arguments.
func (o *BatchOptions) Validate() error {
	if len(o.Inputs) == 0 {
		return errors.New("at least one input FASTA file is required")
	}
	if _, err := seq.ParseKind(o.SeqType); err != nil {
		return err
	}
	if o.Jobs < 1 {
		return fmt.Errorf("--jobs must be >= 1, got %d", o.Jobs)
	}
	if o.OutDir == "" && slices.Contains(o.Inputs, "-") {
		return errors.New("stdin input cannot be batched")
	}
	return nil
}
