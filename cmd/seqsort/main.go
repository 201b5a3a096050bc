/*
Command seqsort is the command line entry point for the suffix-sort
and BWT construction engine. It is the spiritual successor to poly's
own cmd/poly entry point, following the same App/run/main separation
so application() stays unit-testable without spawning a process.

Hack the Planet.
*/
package main

import (
	"compress/gzip"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/urfave/cli/v2"
	"lukechampine.com/blake3"

	"github.com/bebop/seqsort/alphabet"
	"github.com/bebop/seqsort/bio/fasta"
	"github.com/bebop/seqsort/sufsort"
	"github.com/bebop/seqsort/sufsort/packed"
	"github.com/bebop/seqsort/sufsort/sink"
)

func main() {
	run(os.Args)
}

func run(args []string) {
	app := application()
	if err := app.Run(args); err != nil {
		log.Fatal(err)
	}
}

func application() *cli.App {
	return &cli.App{
		Name:  "seqsort",
		Usage: "Suffix-sort and BWT-transform DNA sequence sets.",
		Commands: []*cli.Command{
			{
				Name:  "bwt",
				Usage: "Build the BWT of a FASTA input, forward and/or reverse-complement.",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "v", Aliases: []string{"verbosity"}, Value: 0, Usage: "Log progress to stderr at this verbosity (0 = silent)."},
					&cli.Int64Flag{Name: "cpu-memory", Value: 0, Usage: "Host memory budget in bytes. Defaults to 8 GiB."},
					&cli.Int64Flag{Name: "gpu-memory", Value: 0, Usage: "Device memory budget in bytes. Defaults to 2 GiB."},
					&cli.StringFlag{Name: "c", Aliases: []string{"compression"}, Value: "4", Usage: "Output format: 1-9 selects 2-bit packed output at that gzip level, 1R selects 4-bit (in-stream dollar) at gzip level 1."},
					&cli.BoolFlag{Name: "F", Aliases: []string{"skip-forward"}, Usage: "Skip the forward-strand BWT pass."},
					&cli.BoolFlag{Name: "R", Aliases: []string{"skip-reverse"}, Usage: "Skip the reverse-complement BWT pass."},
					&cli.StringFlag{Name: "i", Usage: "Input FASTA path. Reads stdin if unset.", Required: false},
					&cli.StringFlag{Name: "o", Usage: "Output path prefix. Writes <prefix>.bwt[4].gz, <prefix>.pri and <prefix>.fingerprint, or <prefix>.rc.* for the reverse pass.", Required: true},
				},
				Action: bwtCommand,
			},
		},
	}
}

func bwtCommand(c *cli.Context) error {
	params := sufsort.BWTParams{
		HostMemory:   c.Int64("cpu-memory"),
		DeviceMemory: c.Int64("gpu-memory"),
	}
	if c.Int("v") > 0 {
		params.Logger = func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}

	reads, err := readFasta(c.String("i"))
	if err != nil {
		return err
	}

	gzLevel, fourBit := parseCompression(c.String("c"))
	outPrefix := c.String("o")

	// The sorter's internal alphabet is always 2-bit DNA: -c/--compression
	// selects the *output* sink's packing width (.bwt vs .bwt4), not the
	// cardinality of the symbols being sorted.
	const symbolBits = 2

	g, ctx := errgroup.WithContext(context.Background())
	if !c.Bool("F") {
		g.Go(func() error {
			return runPass(ctx, reads, symbolBits, gzLevel, fourBit, params, outPrefix)
		})
	}
	if !c.Bool("R") {
		g.Go(func() error {
			rc := make([]string, len(reads))
			for i, r := range reads {
				rc[i] = alphabet.ReverseComplement(r)
			}
			return runPass(ctx, rc, symbolBits, gzLevel, fourBit, params, outPrefix+".rc")
		})
	}
	if err := g.Wait(); err != nil {
		return exitError(err)
	}
	return nil
}

// parseCompression maps the -c/--compression flag to a gzip level and
// an output sink choice: "1".."9" select 2-bit packed output (.bwt) at
// that gzip level, "1R" selects 4-bit packed output (.bwt4, dollar
// encoded in-stream) at gzip level 1.
func parseCompression(spec string) (gzLevel int, fourBit bool) {
	fourBit = strings.HasSuffix(spec, "R")
	numeric := strings.TrimSuffix(spec, "R")
	level, err := strconv.Atoi(numeric)
	if err != nil || level < 1 || level > 9 {
		level = 4
	}
	return level, fourBit
}

func readFasta(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sufsort.ErrInputFormat, err)
		}
		defer f.Close()
		r = f
	}

	parser := fasta.NewParser(r, 1<<20)
	var reads []string
	for {
		read, err := parser.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		reads = append(reads, read.Sequence)
	}
	return reads, nil
}

func runPass(ctx context.Context, reads []string, symbolBits, gzLevel int, fourBit bool, params sufsort.BWTParams, outPrefix string) error {
	ext := ".bwt"
	if fourBit {
		ext = ".bwt4"
	}
	bwtFile, err := os.Create(outPrefix + ext + ".gz")
	if err != nil {
		return fmt.Errorf("%w: %v", sufsort.ErrSink, err)
	}
	defer bwtFile.Close()
	gz, err := gzip.NewWriterLevel(bwtFile, gzLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", sufsort.ErrSink, err)
	}
	defer gz.Close()

	var out sink.Sink
	if fourBit {
		out = sink.NewFourBit(gz)
	} else {
		out = sink.NewTwoBit(gz)
	}

	encoded := make([][]byte, len(reads))
	for i, r := range reads {
		codes, encErr := fasta.Encode(r)
		if encErr != nil {
			return encErr
		}
		encoded[i] = codes
	}

	var result sufsort.Result
	if len(reads) == 1 {
		result, err = sufsort.BWTSingle(ctx, encoded[0], symbolBits, out, params)
	} else {
		result, err = sufsort.BWTSet(ctx, encoded, symbolBits, out, params)
	}
	if err != nil {
		return err
	}

	priFile, err := os.Create(outPrefix + ".pri")
	if err != nil {
		return fmt.Errorf("%w: %v", sufsort.ErrSink, err)
	}
	defer priFile.Close()

	if err := writeFingerprints(outPrefix+".fingerprint", symbolBits, encoded); err != nil {
		return err
	}

	if len(reads) == 1 {
		return sufsort.PrimaryMap{{Position: result.Primary}}.WriteASCII(priFile)
	}
	result.PrimaryMap.Sort()
	return result.PrimaryMap.WriteASCII(priFile)
}

// writeFingerprints records a content-addressed digest per read
// alongside the BWT output, so two runs over differently-ordered
// FASTA input can be recognized as having sorted the same read set.
// Each digest is a blake3 hash of the read's packed symbol stream
// (sufsort's own on-the-wire representation, via Stream.WriteTo)
// rather than the raw ASCII sequence, so two reads that encode to the
// same packed bytes are recognized as identical regardless of
// surface casing or whitespace already normalized away by encoding.
func writeFingerprints(path string, symbolBits int, encoded [][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", sufsort.ErrSink, err)
	}
	defer f.Close()

	for i, codes := range encoded {
		stream, err := packed.FromSymbols(codes, symbolBits, 32, packed.LittleEndian)
		if err != nil {
			return fmt.Errorf("%w: %v", sufsort.ErrInputFormat, err)
		}
		hasher := blake3.New(32, nil)
		if _, err := stream.WriteTo(hasher); err != nil {
			return fmt.Errorf("%w: %v", sufsort.ErrSink, err)
		}
		if _, err := fmt.Fprintf(f, "%d\t%s\n", i, hex.EncodeToString(hasher.Sum(nil))); err != nil {
			return fmt.Errorf("%w: %v", sufsort.ErrSink, err)
		}
	}
	return nil
}

// exitError wraps an orchestrator error as a cli exit error with exit
// code 1; every failure class shares that code, and the error text
// names the kind.
func exitError(err error) error {
	return cli.Exit(err.Error(), 1)
}
