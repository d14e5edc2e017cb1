package app

import (
	"bufio"
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"msalign/core/distmat"
	"msalign/core/fasta"
	"msalign/core/newick"
	"msalign/core/seq"
	"msalign/internal/cli"
	"msalign/internal/clustalo"
	"msalign/internal/cmdutil"
	"msalign/internal/msaapp"
	"msalign/internal/output"
	"msalign/internal/writers"
)

func newAlignCmd(e *env) *cobra.Command {
	var o cli.AlignOptions
	cmd := &cobra.Command{
		Use:   "align -i seqs.fa",
		Short: "Align the sequences of one FASTA file",
		Example: `  msalign align -i globins.fa -f text --order tree
  msalign align -i globins.fa --full --distmat-out globins.mat --guidetree-out globins.dnd
  zcat reads.fa.gz | msalign align -i - --seqtype dna -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e.ran = true
			return e.runAlign(cmd.Context(), &o)
		},
	}
	cli.AddRunFlags(cmd.Flags())
	cli.AddAlignFlags(cmd.Flags(), &o)
	return cmd
}

func (e *env) runAlign(ctx context.Context, o *cli.AlignOptions) error {
	if err := o.Validate(); err != nil {
		return usage(err)
	}
	kind, _ := seq.ParseKind(o.SeqType)

	full := e.cfg.FullMatrix
	if o.DistmatOut != "" && !full {
		cmdutil.Warnf(e.stderr, e.global.Quiet, "--distmat-out implies --full")
		full = true
	}

	ctx, cancel := cmdutil.Timeout(ctx, e.cfg.Timeout)
	defer cancel()

	res, err := e.alignFile(ctx, o.Input, kind, full, func(app *clustalo.App) error {
		return e.applyInputs(app, o)
	})
	if err != nil {
		return err
	}

	if o.GuidetreeOut != "" && res.Tree != nil {
		if err := afero.WriteFile(e.deps.Fs, o.GuidetreeOut, []byte(res.Tree.String()+"\n"), 0o644); err != nil {
			return fmt.Errorf("write guide tree: %w", err)
		}
	}
	if o.DistmatOut != "" && res.Distances != nil {
		if err := distmat.WriteFile(e.deps.Fs, o.DistmatOut, res.Distances); err != nil {
			return fmt.Errorf("write distance matrix: %w", err)
		}
	}
	return e.writeResult(o.Output, res)
}

// applyInputs hands precomputed guide tree and distance matrix files to app.
func (e *env) applyInputs(app *clustalo.App, o *cli.AlignOptions) error {
	if o.DistmatIn != "" {
		m, err := distmat.ReadFile(e.deps.Fs, o.DistmatIn)
		if err != nil {
			return usage(fmt.Errorf("read %s: %w", o.DistmatIn, err))
		}
		if err := app.SetDistanceMatrix(m); err != nil {
			return err
		}
	}
	if o.GuidetreeIn != "" {
		raw, err := afero.ReadFile(e.deps.Fs, o.GuidetreeIn)
		if err != nil {
			return usage(err)
		}
		tree, err := newick.Parse(string(raw))
		if err != nil {
			return usage(fmt.Errorf("read %s: %w", o.GuidetreeIn, err))
		}
		if err := app.SetGuideTree(tree); err != nil {
			return err
		}
	}
	return nil
}

// alignFile reads path, runs clustalo over it and collects the result.
// configure, if set, is called before the run.
func (e *env) alignFile(ctx context.Context, path string, kind seq.Kind, full bool, configure func(*clustalo.App) error) (*output.Result, error) {
	recs, err := fasta.ReadFile(ctx, e.deps.Fs, path)
	if err != nil {
		return nil, usage(fmt.Errorf("read %s: %w", path, err))
	}
	if len(recs) == 0 {
		return nil, usage(fmt.Errorf("%s: no sequences", path))
	}
	names := make([]string, len(recs))
	raws := make([]string, len(recs))
	for i, r := range recs {
		names[i], raws[i] = r.ID, string(r.Seq)
	}
	seqs, err := seq.ParseAll(raws, kind)
	if err != nil {
		return nil, usage(fmt.Errorf("%s: %w", path, err))
	}

	opts := []msaapp.Option{
		msaapp.WithBinary(e.cfg.Binary),
		msaapp.WithFs(e.deps.Fs),
		msaapp.WithTempDir(e.cfg.TempDir),
		msaapp.WithLogger(e.log.With("input", path)),
	}
	if e.deps.Runner != nil {
		opts = append(opts, msaapp.WithRunner(e.deps.Runner))
	}
	app, err := clustalo.New(seqs, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if full {
		if err := app.EnableFullMatrix(); err != nil {
			return nil, err
		}
	}
	if e.cfg.Threads > 0 {
		if err := app.SetThreads(e.cfg.Threads); err != nil {
			return nil, err
		}
	}
	if configure != nil {
		if err := configure(app); err != nil {
			return nil, err
		}
	}

	if err := app.Run(ctx); err != nil {
		return nil, err
	}

	res := &output.Result{Source: path, SeqType: app.SeqType(), Names: names}
	if res.Alignment, err = app.Alignment(); err != nil {
		return nil, err
	}
	if res.Order, err = app.Order(); err != nil {
		return nil, err
	}
	if res.Tree, err = app.GuideTree(); err != nil {
		return nil, err
	}
	if full {
		if res.Distances, err = app.DistanceMatrix(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (e *env) outputOptions() output.Options {
	return output.Options{Order: e.cfg.Output.Order, Wrap: e.cfg.Output.Wrap, Color: e.cfg.Output.Color}
}

// writeResult renders res to path, or stdout for "-".
func (e *env) writeResult(path string, res *output.Result) error {
	if path == "" || path == "-" {
		bw := bufio.NewWriter(e.stdout)
		if err := writers.Write(e.cfg.Output.Format, bw, res, e.outputOptions()); err != nil {
			return err
		}
		return writers.IgnoreBrokenPipe(bw.Flush())
	}
	fh, err := e.deps.Fs.Create(path)
	if err != nil {
		return err
	}
	if err := writers.Write(e.cfg.Output.Format, fh, res, e.outputOptions()); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
