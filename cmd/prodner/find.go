package main

import (
	"fmt"

	"github.com/fwojciec/prodner"
)

// FindCmd is the "find" subcommand.
type FindCmd struct {
	Corpus        string `arg:"" type:"path" help:"Corpus file"`
	Record        int    `arg:"" help:"Record number (1-based)"`
	Query         string `arg:"" help:"Phrase to search for"`
	Substring     bool   `help:"Also match inside words"`
	CaseSensitive bool   `name:"case-sensitive" help:"Match letter case exactly"`
}

// Run executes the find command.
func (c *FindCmd) Run(deps *Dependencies) error {
	records, err := readCorpus(deps, c.Corpus)
	if err != nil {
		return err
	}
	rec, err := record(records, c.Record)
	if err != nil {
		return err
	}

	matches, err := prodner.FindSpans(rec.Text, c.Query, prodner.MatchOptions{
		WholeWord:     !c.Substring,
		CaseSensitive: c.CaseSensitive,
	})
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintf(deps.Stdout, "%q not found in record %d\n", c.Query, c.Record)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Found: %d matches\n", len(matches))
	printMatches(deps, rec.Text, matches)
	return nil
}

// contextBytes is how much surrounding text is shown around a match.
const contextBytes = 30

func printMatches(deps *Dependencies, text string, matches []prodner.Match) {
	for i, m := range matches {
		fmt.Fprintf(deps.Stdout, "%3d. [%d:%d] %s\n", i+1, prodner.RuneOffset(text, m.Start), prodner.RuneOffset(text, m.End), snippet(text, m.Start, m.End))
	}
}

// snippet returns the match in brackets with some text on either side,
// cut on rune boundaries.
func snippet(text string, start, end int) string {
	from := start - contextBytes
	if from < 0 {
		from = 0
	}
	for from > 0 && from < len(text) && !isRuneStart(text[from]) {
		from--
	}
	to := end + contextBytes
	if to > len(text) {
		to = len(text)
	}
	for to < len(text) && !isRuneStart(text[to]) {
		to++
	}

	prefix, suffix := "", ""
	if from > 0 {
		prefix = "..."
	}
	if to < len(text) {
		suffix = "..."
	}
	return prefix + text[from:start] + "[" + text[start:end] + "]" + text[end:to] + suffix
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
