package main

import (
	"fmt"

	"github.com/fwojciec/prodner"
)

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	Corpus string `arg:"" type:"path" help:"Corpus file"`
}

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	records, err := readCorpus(deps, c.Corpus)
	if err != nil {
		return err
	}

	stats := prodner.ComputeCorpusStats(records)
	fmt.Fprintf(deps.Stdout, "Total records: %d\n", stats.Total)
	fmt.Fprintf(deps.Stdout, "Processed:     %d\n", stats.Processed)
	fmt.Fprintf(deps.Stdout, "Unprocessed:   %d\n", stats.Unprocessed())
	fmt.Fprintf(deps.Stdout, "Progress:      %.1f%%\n", stats.Percentage())
	return nil
}
