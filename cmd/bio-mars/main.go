package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/mars/encoding/fasta"
	"github.com/grailbio/mars/mars"
	"github.com/grailbio/mars/pairwise"
	"github.com/grailbio/mars/score"
	"github.com/klauspost/compress/gzip"
	"v.io/x/lib/cmdline"
)

// optsFlags holds the flags shared by all subcommands.
type optsFlags struct {
	alphabet     *string
	method       *string
	blockLen     *int
	refineBlocks *int
	q            *int
	parallelism  *int
	candidates   *int
}

func newOptsFlags(cmd *cmdline.Command) optsFlags {
	d := mars.DefaultOpts
	return optsFlags{
		alphabet:     cmd.Flags.String("a", d.Alphabet.String(), "Alphabet: DNA or PROT"),
		method:       cmd.Flags.String("m", d.Method.String(), "Comparison method: heuristic (0) or exact (1). The exact method is limited to sequences of 20000 residues"),
		blockLen:     cmd.Flags.Int("l", d.BlockLen, "Block length. 0 uses the square root of each sequence length"),
		refineBlocks: cmd.Flags.Int("P", d.RefineBlocks, "Number of blocks used to refine each rotation"),
		q:            cmd.Flags.Int("q", d.Q, "q-gram length"),
		parallelism:  cmd.Flags.Int("T", d.Parallelism, "Number of concurrent comparison jobs. 0 uses all CPUs"),
		candidates:   cmd.Flags.Int("candidates", d.Candidates, "Number of candidate rotations scored per pair by the heuristic method"),
	}
}

func (f optsFlags) opts() (mars.Opts, error) {
	opts := mars.DefaultOpts
	var err error
	if opts.Alphabet, err = score.ParseAlphabet(*f.alphabet); err != nil {
		return opts, err
	}
	if opts.Method, err = mars.ParseMethod(*f.method); err != nil {
		return opts, err
	}
	opts.BlockLen = *f.blockLen
	opts.RefineBlocks = *f.refineBlocks
	opts.Q = *f.q
	opts.Parallelism = *f.parallelism
	opts.Candidates = *f.candidates
	return opts, nil
}

func newCmdRotate() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "rotate",
		Short:    "Rotate circular sequences to a common starting position",
		ArgsName: "input.fa output.fa",
	}
	flags := newOptsFlags(cmd)
	treePath := cmd.Flags.String("tree", "", "If set, write the guide tree to this path, in Newick format")
	matrixPath := cmd.Flags.String("matrix", "", "If set, write the pairwise distance matrix to this path, as TSV")
	loadMatrixPath := cmd.Flags.String("load-matrix", "", "If set, read the pairwise distance matrix from this TSV instead of computing it")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("rotate takes input and output paths, but got %v", argv)
		}
		opts, err := flags.opts()
		if err != nil {
			return err
		}
		return rotate(vcontext.Background(), opts, rotateOutputs{
			path:       argv[1],
			treePath:   *treePath,
			matrixPath: *matrixPath,
		}, argv[0], *loadMatrixPath)
	})
	return cmd
}

func newCmdMatrix() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "matrix",
		Short:    "Compute the circular edit distance and rotation of every pair of sequences",
		ArgsName: "input.fa output.tsv",
	}
	flags := newOptsFlags(cmd)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("matrix takes input and output paths, but got %v", argv)
		}
		opts, err := flags.opts()
		if err != nil {
			return err
		}
		return matrix(vcontext.Background(), opts, argv[0], argv[1])
	})
	return cmd
}

// readRecords reads a FASTA file, decompressing it if needed.
func readRecords(ctx context.Context, path string, alpha score.Alphabet) (recs []fasta.Record, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	var r io.Reader = in.Reader(ctx)
	if u, _ := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	if recs, err = fasta.ReadRecords(r, alpha); err != nil {
		return nil, errors.E(err, path)
	}
	if len(recs) == 0 {
		return nil, errors.E(errors.Invalid, path, "contains no sequence")
	}
	return recs, nil
}

// writeOutput creates path and calls write on it. Paths ending in .gz are
// gzipped.
func writeOutput(ctx context.Context, path string, write func(w io.Writer) error) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	if !strings.HasSuffix(path, ".gz") {
		return write(out.Writer(ctx))
	}
	var once errors.Once
	gz := gzip.NewWriter(out.Writer(ctx))
	once.Set(write(gz))
	once.Set(gz.Close())
	return once.Err()
}

type rotateOutputs struct {
	path, treePath, matrixPath string
}

func rotate(ctx context.Context, opts mars.Opts, outs rotateOutputs, inPath, loadMatrixPath string) error {
	start := time.Now()
	log.Printf("reading %s", inPath)
	recs, err := readRecords(ctx, inPath, opts.Alphabet)
	if err != nil {
		return err
	}
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}

	var m *pairwise.Matrix
	if loadMatrixPath != "" {
		log.Printf("reading matrix %s", loadMatrixPath)
		if m, err = readMatrix(ctx, loadMatrixPath, ids); err != nil {
			return err
		}
	} else {
		if m, _, err = mars.Compare(recs, opts); err != nil {
			return err
		}
	}
	tree, rots, err := mars.Rotate(recs, m)
	if err != nil {
		return err
	}

	log.Printf("writing %s", outs.path)
	err = writeOutput(ctx, outs.path, func(w io.Writer) error {
		fw := fasta.NewWriter(w)
		for i, r := range recs {
			if err := fw.Write(r, rots[i]); err != nil {
				return err
			}
		}
		return fw.Flush()
	})
	if err != nil {
		return err
	}
	if outs.treePath != "" {
		if err := writeOutput(ctx, outs.treePath, func(w io.Writer) error {
			return tree.WriteNewick(w, ids)
		}); err != nil {
			return err
		}
	}
	if outs.matrixPath != "" {
		if err := writeOutput(ctx, outs.matrixPath, func(w io.Writer) error {
			return pairwise.WriteTSV(w, m, ids)
		}); err != nil {
			return err
		}
	}
	log.Printf("processed %d sequence(s) in %v", len(recs), time.Since(start))
	return nil
}

func readMatrix(ctx context.Context, path string, ids []string) (m *pairwise.Matrix, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	var r io.Reader = in.Reader(ctx)
	if u, _ := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	return pairwise.ReadTSV(r, ids)
}

func matrix(ctx context.Context, opts mars.Opts, inPath, outPath string) error {
	start := time.Now()
	log.Printf("reading %s", inPath)
	recs, err := readRecords(ctx, inPath, opts.Alphabet)
	if err != nil {
		return err
	}
	m, _, err := mars.Compare(recs, opts)
	if err != nil {
		return err
	}
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	if err := writeOutput(ctx, outPath, func(w io.Writer) error {
		return pairwise.WriteTSV(w, m, ids)
	}); err != nil {
		return err
	}
	log.Printf("processed %d sequence(s) in %v", len(recs), time.Since(start))
	return nil
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:     "bio-mars",
		Short:    "Rotate circular sequences for multiple sequence alignment",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdRotate(),
			newCmdMatrix(),
		},
	})
}
