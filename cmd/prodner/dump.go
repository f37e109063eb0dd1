package main

import (
	"fmt"

	"github.com/fwojciec/prodner"
	"github.com/fwojciec/prodner/sqlite"
)

// DumpCmd is the "dump" subcommand.
type DumpCmd struct {
	DB    string `arg:"" type:"path" help:"SQLite database written by batch --db"`
	Out   string `short:"o" default:"corpus.json" help:"Corpus output path"`
	Limit int    `help:"Maximum number of pages (0 for all)"`
	Prune bool   `help:"Delete exported pages from the database after writing the corpus"`
}

// Run executes the dump command.
func (c *DumpCmd) Run(deps *Dependencies) error {
	db := sqlite.NewDB(c.DB)
	if err := db.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", c.DB, err)
	}
	defer db.Close()

	svc := sqlite.NewPageService(db)
	pages, err := svc.FindPages(deps.Ctx, prodner.PageFilter{Limit: c.Limit})
	if err != nil {
		return err
	}

	records := make([]*prodner.AnnotationRecord, 0, len(pages))
	for _, p := range pages {
		records = append(records, p.Record())
	}
	if err := writeCorpus(c.Out, records); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Wrote %d records to %s\n", len(records), c.Out)

	if !c.Prune {
		return nil
	}
	for _, p := range pages {
		if err := svc.DeletePage(deps.Ctx, p.ID); err != nil {
			return fmt.Errorf("prune %s: %w", p.SourceURL, err)
		}
	}
	fmt.Fprintf(deps.Stdout, "Pruned %d pages from %s\n", len(pages), c.DB)
	return nil
}
