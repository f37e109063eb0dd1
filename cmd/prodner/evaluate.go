package main

import (
	"fmt"

	"github.com/fwojciec/prodner"
)

// EvaluateCmd is the "evaluate" subcommand.
type EvaluateCmd struct {
	Corpus  string `arg:"" type:"path" help:"Labeled corpus file"`
	Details bool   `short:"d" help:"List missed and extra spans"`

	ModelFlags `embed:""`
}

// Run executes the evaluate command.
func (c *EvaluateCmd) Run(deps *Dependencies) error {
	records, err := readCorpus(deps, c.Corpus)
	if err != nil {
		return err
	}
	rec, err := openRecognizer(deps, c.ModelFlags)
	if err != nil {
		return err
	}

	var matched, missed, extra, evaluated int
	for i, r := range records {
		if len(r.Spans) == 0 {
			continue
		}
		predicted, err := rec.Recognize(deps.Ctx, r.Text)
		if err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		cmp := prodner.Compare(r.Spans, predicted)
		evaluated++
		matched += len(cmp.Matched)
		missed += len(cmp.Missed)
		extra += len(cmp.Extra)

		fmt.Fprintf(deps.Stdout, "%3d. %s  matched=%d missed=%d extra=%d\n",
			i+1, r.SourceURL, len(cmp.Matched), len(cmp.Missed), len(cmp.Extra))
		if c.Details {
			for _, s := range cmp.Missed {
				fmt.Fprintf(deps.Stdout, "     - [%d:%d] %q\n", s.Start, s.End, s.Text)
			}
			for _, s := range cmp.Extra {
				fmt.Fprintf(deps.Stdout, "     + [%d:%d] %q\n", s.Start, s.End, s.Text)
			}
		}
	}

	if evaluated == 0 {
		fmt.Fprintln(deps.Stdout, "No labeled records to evaluate")
		return nil
	}

	precision := ratio(matched, matched+extra)
	recall := ratio(matched, matched+missed)
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	fmt.Fprintf(deps.Stdout, "Evaluated %d records with %s\n", evaluated, c.ModelFlags.Name())
	fmt.Fprintf(deps.Stdout, "Precision: %.3f  Recall: %.3f  F1: %.3f\n", precision, recall, f1)
	return nil
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
