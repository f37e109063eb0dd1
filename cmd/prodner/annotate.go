package main

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/prodner"
	"github.com/fwojciec/prodner/annotate"
)

// AnnotateCmd is the "annotate" subcommand.
type AnnotateCmd struct {
	Corpus string `arg:"" type:"path" help:"Corpus file"`
	Record int    `arg:"" help:"Record number (1-based)"`
	Label  string `default:"PRODUCT" help:"Label given to accepted spans"`
}

const annotateHelp = `Commands:
  search <query>      find occurrences of query
  add <n>|all         accept result n, or every result
  span <start> <end>  accept an explicit character range
  remove <n>          delete collection entry n
  clear --force       empty the collection
  export              list the collection
  set wholeword|case on|off
  save                write the collection back to the corpus
  quit                leave (unsaved changes are discarded)`

// Run executes the annotate command.
func (c *AnnotateCmd) Run(deps *Dependencies) error {
	records, err := readCorpus(deps, c.Corpus)
	if err != nil {
		return err
	}
	rec, err := record(records, c.Record)
	if err != nil {
		return err
	}

	session := annotate.NewSession(rec.Text, rec.Spans)
	session.Label = c.Label
	saved := session.Collection.Export()

	fmt.Fprintf(deps.Stdout, "Record %d of %d: %s (%d bytes, %d spans)\n", c.Record, len(records), rec.SourceURL, len(rec.Text), len(saved))
	fmt.Fprintln(deps.Stdout, `Type "help" for commands.`)

	scanner := bufio.NewScanner(deps.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(deps.Stdout, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "help":
			fmt.Fprintln(deps.Stdout, annotateHelp)
			continue
		case "quit", "exit":
			c.warnUnsaved(deps, saved, session)
			return nil
		case "save":
			rec.Spans = session.Collection.Export()
			if err := writeCorpus(c.Corpus, records); err != nil {
				return fmt.Errorf("save corpus: %w", err)
			}
			saved = rec.Spans
			fmt.Fprintf(deps.Stdout, "Saved %d spans to %s\n", len(saved), c.Corpus)
			continue
		}

		cmd, err := annotate.Parse(line)
		if err != nil {
			fmt.Fprintf(deps.Stdout, "error: %s\n", prodner.ErrorMessage(err))
			continue
		}
		outcome, err := cmd.Execute(session)
		if err != nil {
			fmt.Fprintf(deps.Stdout, "error: %s\n", prodner.ErrorMessage(err))
			continue
		}

		fmt.Fprintln(deps.Stdout, outcome.Message)
		printMatches(deps, session.Text, outcome.Matches)
		for i, s := range outcome.Spans {
			fmt.Fprintf(deps.Stdout, "%3d. [%d:%d] %s %q\n", i+1, prodner.RuneOffset(session.Text, s.Start), prodner.RuneOffset(session.Text, s.End), s.Label, s.Text)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout)
	c.warnUnsaved(deps, saved, session)
	return nil
}

func (c *AnnotateCmd) warnUnsaved(deps *Dependencies, saved []prodner.Span, session *annotate.Session) {
	if !slices.Equal(saved, session.Collection.Export()) {
		fmt.Fprintln(deps.Stderr, "warning: unsaved changes discarded")
	}
}
