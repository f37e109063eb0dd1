package annotate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/prodner"
)

// Session binds one text to the latest search results and the collection
// of spans accepted so far.
type Session struct {
	Text       string
	Label      string
	Options    prodner.MatchOptions
	Results    []prodner.Match
	Collection *Collection
}

// NewSession starts a session over text. Existing spans seed the collection.
// Searches default to whole-word, case-insensitive matching.
func NewSession(text string, existing []prodner.Span) *Session {
	return &Session{
		Text:       text,
		Label:      prodner.LabelProduct,
		Options:    prodner.MatchOptions{WholeWord: true},
		Collection: NewCollection(existing...),
	}
}

// Outcome is the result of executing a command.
type Outcome struct {
	Message string
	Matches []prodner.Match
	Spans   []prodner.Span
}

// Command is one annotator action against a session.
type Command interface {
	Execute(s *Session) (Outcome, error)
}

// Search replaces the session results with the occurrences of Query.
type Search struct {
	Query string
}

func (c Search) Execute(s *Session) (Outcome, error) {
	if s.Text == "" {
		return Outcome{}, prodner.Errorf(prodner.EINVALID, "no text to search")
	}
	query := strings.TrimSpace(c.Query)
	if query == "" {
		return Outcome{}, prodner.Errorf(prodner.EINVALID, "search query required")
	}

	matches, err := prodner.FindSpans(s.Text, query, s.Options)
	if err != nil {
		return Outcome{}, err
	}
	s.Results = matches

	if len(matches) == 0 {
		return Outcome{Message: fmt.Sprintf("%q not found in text", query)}, nil
	}
	return Outcome{
		Message: fmt.Sprintf("Found: %d matches", len(matches)),
		Matches: matches,
	}, nil
}

// Add accepts the search result at Index (zero-based) into the collection.
type Add struct {
	Index int
}

func (c Add) Execute(s *Session) (Outcome, error) {
	if c.Index < 0 || c.Index >= len(s.Results) {
		return Outcome{}, prodner.Errorf(prodner.ERANGE, "result %d out of range (%d results)", c.Index+1, len(s.Results))
	}
	return addSpan(s, s.Results[c.Index].Span(s.Label)), nil
}

// AddAll accepts every current search result.
type AddAll struct{}

func (AddAll) Execute(s *Session) (Outcome, error) {
	if len(s.Results) == 0 {
		return Outcome{}, prodner.Errorf(prodner.EINVALID, "no results to add")
	}
	added := 0
	for _, m := range s.Results {
		if s.Collection.Add(m.Span(s.Label)) {
			added++
		}
	}
	return Outcome{Message: fmt.Sprintf("Added %d of %d results", added, len(s.Results))}, nil
}

// AddSpan accepts an explicit range of the session text. Start and End
// count characters, as displayed offsets and corpus files do.
type AddSpan struct {
	Start int
	End   int
}

func (c AddSpan) Execute(s *Session) (Outcome, error) {
	if n := utf8.RuneCountInString(s.Text); c.Start < 0 || c.Start >= c.End || c.End > n {
		return Outcome{}, prodner.Errorf(prodner.ERANGE, "span [%d:%d] out of range for text of %d characters", c.Start, c.End, n)
	}
	start, end := prodner.ByteOffset(s.Text, c.Start), prodner.ByteOffset(s.Text, c.End)
	span := prodner.Span{Start: start, End: end, Label: s.Label, Text: s.Text[start:end]}
	return addSpan(s, span), nil
}

func addSpan(s *Session, span prodner.Span) Outcome {
	if !s.Collection.Add(span) {
		return Outcome{Message: "This entity is already in the collection"}
	}
	return Outcome{Message: fmt.Sprintf("Added to collection: %q", span.Text)}
}

// Remove deletes the collection entry at Index (zero-based).
type Remove struct {
	Index int
}

func (c Remove) Execute(s *Session) (Outcome, error) {
	removed, err := s.Collection.Remove(c.Index)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: fmt.Sprintf("Removed from collection: %q", removed.Text)}, nil
}

// Clear empties the collection. Confirm must be set.
type Clear struct {
	Confirm bool
}

func (c Clear) Execute(s *Session) (Outcome, error) {
	if s.Collection.Len() == 0 {
		return Outcome{Message: "Collection is already empty"}, nil
	}
	n, err := s.Collection.Clear(c.Confirm)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: fmt.Sprintf("Removed %d entities", n)}, nil
}

// Export returns the collection contents without changing them.
type Export struct{}

func (Export) Execute(s *Session) (Outcome, error) {
	spans := s.Collection.Export()
	if len(spans) == 0 {
		return Outcome{Message: "Collection is empty", Spans: spans}, nil
	}
	return Outcome{Message: fmt.Sprintf("In collection: %d entities", len(spans)), Spans: spans}, nil
}

// SetOption toggles a search option: "wholeword" or "case".
type SetOption struct {
	Name  string
	Value bool
}

func (c SetOption) Execute(s *Session) (Outcome, error) {
	switch c.Name {
	case "wholeword":
		s.Options.WholeWord = c.Value
	case "case":
		s.Options.CaseSensitive = c.Value
	default:
		return Outcome{}, prodner.Errorf(prodner.EINVALID, "unknown option %q (want wholeword or case)", c.Name)
	}
	return Outcome{Message: fmt.Sprintf("%s = %t", c.Name, c.Value)}, nil
}

// Parse turns a command line into a Command. Indexes on the command line
// are one-based, matching how results and entries are displayed.
//
//	search <query>      find occurrences of query
//	add <n>|all         accept result n, or every result
//	span <start> <end>  accept an explicit character range
//	remove <n>          delete collection entry n
//	clear [--force]     empty the collection (requires --force)
//	export              list the collection
//	set wholeword|case on|off
func Parse(line string) (Command, error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "search", "find":
		return Search{Query: rest}, nil
	case "add":
		if rest == "all" {
			return AddAll{}, nil
		}
		n, err := parseIndex(rest)
		if err != nil {
			return nil, err
		}
		return Add{Index: n}, nil
	case "span":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return nil, prodner.Errorf(prodner.EINVALID, "usage: span <start> <end>")
		}
		start, err1 := strconv.Atoi(fields[0])
		end, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return nil, prodner.Errorf(prodner.EINVALID, "span offsets must be integers")
		}
		return AddSpan{Start: start, End: end}, nil
	case "remove", "rm":
		n, err := parseIndex(rest)
		if err != nil {
			return nil, err
		}
		return Remove{Index: n}, nil
	case "clear":
		return Clear{Confirm: rest == "--force" || rest == "-f"}, nil
	case "export", "list":
		return Export{}, nil
	case "set":
		fields := strings.Fields(rest)
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			return nil, prodner.Errorf(prodner.EINVALID, "usage: set wholeword|case on|off")
		}
		return SetOption{Name: fields[0], Value: fields[1] == "on"}, nil
	case "":
		return nil, prodner.Errorf(prodner.EINVALID, "empty command")
	}
	return nil, prodner.Errorf(prodner.EINVALID, "unknown command %q", verb)
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, prodner.Errorf(prodner.EINVALID, "expected a positive number, got %q", s)
	}
	return n - 1, nil
}
