package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/prodner"
	prodfs "github.com/fwojciec/prodner/fs"
	prodjson "github.com/fwojciec/prodner/json"
)

// ConvertCmd is the "convert" subcommand.
type ConvertCmd struct {
	Corpus string `arg:"" type:"path" help:"Corpus file"`
	Out    string `arg:"" type:"path" help:"Training data output path"`
}

// Run executes the convert command.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	f, err := os.Open(c.Corpus)
	if err != nil {
		return prodner.Errorf(prodner.EINVALID, "open corpus: %v", err)
	}
	defer f.Close()

	examples, stats, err := prodjson.ConvertTraining(f)
	if err != nil {
		return err
	}

	if err := prodfs.WriteFileAtomic(c.Out, func(w io.Writer) error {
		return prodjson.WriteTraining(w, examples)
	}); err != nil {
		return fmt.Errorf("write training data: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Converted %d examples to %s\n", stats.Examples, c.Out)
	if stats.SkippedRecords > 0 || stats.SkippedSpans > 0 {
		fmt.Fprintf(deps.Stdout, "Skipped %d records and %d spans\n", stats.SkippedRecords, stats.SkippedSpans)
	}
	return nil
}
