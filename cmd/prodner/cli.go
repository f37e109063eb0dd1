package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/prodner"
	"github.com/fwojciec/prodner/gemini"
	prodfs "github.com/fwojciec/prodner/fs"
	prodhttp "github.com/fwojciec/prodner/http"
	prodjson "github.com/fwojciec/prodner/json"
	"github.com/fwojciec/prodner/readability"
	"github.com/fwojciec/prodner/rod"
	prodslog "github.com/fwojciec/prodner/slog"
	"github.com/fwojciec/prodner/trafilatura"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/genai"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Registry *prometheus.Registry

	// NewFetcher and OpenRecognizer build the network-facing services a
	// command needs. Tests replace them with mocks.
	NewFetcher     func(FetchFlags) (prodner.Fetcher, error)
	OpenRecognizer func(ctx context.Context, flags ModelFlags) (prodner.Recognizer, error)
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.Logger
}

func (d *Dependencies) registry() *prometheus.Registry {
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	return d.Registry
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `type:"path" env:"PRODNER_CONFIG" help:"YAML configuration file"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Batch    BatchCmd    `cmd:"" help:"Fetch a CSV list of URLs into an unlabeled corpus"`
	Find     FindCmd     `cmd:"" help:"Search a corpus record for a phrase"`
	Annotate AnnotateCmd `cmd:"" help:"Interactively label spans in a corpus record"`
	Convert  ConvertCmd  `cmd:"" help:"Convert a corpus to the positional training format"`
	Stats    StatsCmd    `cmd:"" help:"Show annotation progress for a corpus"`
	Extract  ExtractCmd  `cmd:"" help:"List the products mentioned on a page"`
	Evaluate EvaluateCmd `cmd:"" help:"Compare recognizer output with corpus labels"`
	Serve    ServeCmd    `cmd:"" help:"Serve product extraction over HTTP"`
	Dump     DumpCmd     `cmd:"" help:"Export stored pages as an unlabeled corpus"`
}

// FetchFlags configure page retrieval.
type FetchFlags struct {
	Timeout   time.Duration `env:"PRODNER_TIMEOUT" default:"${timeout}" help:"Per-request timeout"`
	UserAgent string        `name:"user-agent" env:"PRODNER_USER_AGENT" default:"${user_agent}" help:"User-Agent header"`
	Browser   bool          `help:"Render pages in headless Chrome"`
	Extract   string        `enum:"none,main,readability" default:"none" help:"Reduce pages to main content before normalizing (none, main, readability)"`
}

// ModelFlags select the recognizer. A gazetteer file takes precedence
// over Gemini.
type ModelFlags struct {
	Model     string `env:"PRODNER_MODEL" default:"${model}" help:"Gemini model name"`
	Gazetteer string `env:"PRODNER_GAZETTEER" default:"${gazetteer}" help:"File of known product names, one per line"`
}

// Name identifies the recognizer the flags select.
func (f ModelFlags) Name() string {
	if f.Gazetteer != "" {
		return "gazetteer"
	}
	return f.Model
}

// NewFetcher builds the HTTP fetcher, or the browser fetcher with --browser.
func NewFetcher(f FetchFlags) (prodner.Fetcher, error) {
	if f.Browser {
		return rod.NewFetcher(rod.WithFetchTimeout(f.Timeout), rod.WithUserAgent(f.UserAgent))
	}
	return prodhttp.NewFetcher(
		prodhttp.WithTimeout(f.Timeout),
		prodhttp.WithUserAgent(f.UserAgent),
	), nil
}

// NewExtractor returns the content extractor named by --extract, or nil.
func NewExtractor(name string) prodner.Extractor {
	switch name {
	case "main":
		return trafilatura.NewExtractor()
	case "readability":
		return readability.NewExtractor()
	}
	return nil
}

// OpenRecognizer loads a gazetteer recognizer when a gazetteer file is
// set, and a Gemini recognizer otherwise.
func OpenRecognizer(ctx context.Context, f ModelFlags) (prodner.Recognizer, error) {
	if f.Gazetteer != "" {
		names, err := readGazetteer(f.Gazetteer)
		if err != nil {
			return nil, err
		}
		return prodner.NewGazetteerRecognizer(prodner.LabelProduct, names), nil
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, prodner.Errorf(prodner.EUNAVAILABLE, "GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey, or pass --gazetteer")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, prodner.Errorf(prodner.EUNAVAILABLE, "connect to Gemini API: %v", err)
	}
	return gemini.NewRecognizer(client.Models, gemini.WithModel(f.Model)), nil
}

// readGazetteer reads one product name per line. Blank lines and lines
// starting with # are ignored.
func readGazetteer(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, prodner.Errorf(prodner.EINVALID, "open gazetteer: %v", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, prodner.Errorf(prodner.EINVALID, "gazetteer %s has no names", path)
	}
	return names, nil
}

// openFetcher builds the fetcher and extractor for f with logging applied.
func openFetcher(deps *Dependencies, f FetchFlags) (prodner.Fetcher, prodner.Extractor, error) {
	fetcher, err := deps.NewFetcher(f)
	if err != nil {
		if f.Browser {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
		}
		return nil, nil, err
	}
	logger := deps.logger()

	var extractor prodner.Extractor
	if e := NewExtractor(f.Extract); e != nil {
		extractor = prodslog.NewLoggingExtractor(e, logger)
	}
	return prodslog.NewLoggingFetcher(fetcher, logger), extractor, nil
}

func openRecognizer(deps *Dependencies, f ModelFlags) (prodner.Recognizer, error) {
	rec, err := deps.OpenRecognizer(deps.Ctx, f)
	if err != nil {
		return nil, err
	}
	return prodslog.NewLoggingRecognizer(rec, deps.logger()), nil
}

// readCorpus loads a corpus file, reporting skipped entries on stderr.
func readCorpus(deps *Dependencies, path string) ([]*prodner.AnnotationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, prodner.Errorf(prodner.EINVALID, "open corpus: %v", err)
	}
	defer f.Close()

	records, skipped, err := prodjson.ReadCorpus(f)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		fmt.Fprintf(deps.Stderr, "warning: skipped %d malformed corpus entries\n", skipped)
	}
	return records, nil
}

// record returns the record at a one-based position.
func record(records []*prodner.AnnotationRecord, n int) (*prodner.AnnotationRecord, error) {
	if n < 1 || n > len(records) {
		return nil, prodner.Errorf(prodner.ENOTFOUND, "record %d not found (corpus has %d records)", n, len(records))
	}
	return records[n-1], nil
}

// writeCorpus replaces the corpus file atomically.
func writeCorpus(path string, records []*prodner.AnnotationRecord) error {
	return prodfs.WriteFileAtomic(path, func(w io.Writer) error {
		return prodjson.WriteCorpus(w, records)
	})
}
