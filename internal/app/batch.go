package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"msalign/core/seq"
	"msalign/internal/cli"
	"msalign/internal/cmdutil"
	"msalign/internal/output"
	"msalign/internal/writers"
)

func newBatchCmd(e *env) *cobra.Command {
	var o cli.BatchOptions
	cmd := &cobra.Command{
		Use:   "batch [flags] file.fa...",
		Short: "Align several FASTA files concurrently",
		Long: `batch aligns every input file independently, running up to --jobs
clustalo processes at once. Results go to stdout, one document per file,
or to --out-dir as one file per input. The first failure stops the batch.`,
		Example: `  msalign batch -j 4 families/*.fa --out-dir aligned -f text
  msalign batch a.fa b.fa -f jsonl --sort`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.ran = true
			inputs, err := cli.ExpandInputs(e.deps.Fs, args)
			if err != nil {
				return usage(err)
			}
			o.Inputs = inputs
			return e.runBatch(cmd.Context(), &o)
		},
	}
	cli.AddRunFlags(cmd.Flags())
	cli.AddBatchFlags(cmd.Flags(), &o)
	return cmd
}

func (e *env) runBatch(ctx context.Context, o *cli.BatchOptions) error {
	if err := o.Validate(); err != nil {
		return usage(err)
	}
	kind, _ := seq.ParseKind(o.SeqType)
	format := e.cfg.Output.Format

	var (
		sink chan<- *output.Result
		done <-chan error
	)
	if o.OutDir != "" {
		if o.Sort {
			cmdutil.Warnf(e.stderr, e.global.Quiet, "--sort has no effect with --out-dir")
		}
		if err := e.deps.Fs.MkdirAll(o.OutDir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", o.OutDir, err)
		}
	} else {
		sink, done = writers.StartResultWriter(e.stdout, format, e.outputOptions(), o.Sort, o.Jobs)
	}

	started := time.Now()
	var aligned atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Jobs)
	for _, path := range o.Inputs {
		path := path
		g.Go(func() error {
			runCtx, cancel := cmdutil.Timeout(gctx, e.cfg.Timeout)
			defer cancel()

			res, err := e.alignFile(runCtx, path, kind, e.cfg.FullMatrix, nil)
			if err != nil {
				return err
			}
			aligned.Add(1)
			if o.OutDir != "" {
				return e.writeResult(filepath.Join(o.OutDir, resultName(path, format)), res)
			}
			select {
			case sink <- res:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	err := g.Wait()
	if sink != nil {
		close(sink)
		if werr := <-done; err == nil {
			err = werr
		}
	}
	e.log.Info("batch finished", "inputs", len(o.Inputs), "aligned", aligned.Load(), "jobs", o.Jobs, "elapsed", time.Since(started), "error", err)
	return err
}

var resultExt = map[string]string{
	writers.FormatFASTA: ".aln.fa",
	writers.FormatText:  ".aln",
	writers.FormatJSON:  ".json",
	writers.FormatJSONL: ".jsonl",
	writers.FormatYAML:  ".yaml",
}

// resultName derives the output file name for input path: the base name
// without FASTA and gzip suffixes, plus an extension for format.
func resultName(path, format string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	for _, ext := range []string{".fasta", ".fas", ".faa", ".fna", ".fa"} {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}
	ext, ok := resultExt[format]
	if !ok {
		ext = "." + format
	}
	return base + ext
}
