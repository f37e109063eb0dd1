package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/prodner"
	"github.com/fwojciec/prodner/extract"
	"github.com/fwojciec/prodner/goquery"
)

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL  string `arg:"" help:"Page URL"`
	JSON bool   `help:"Print {\"products\": [...]} instead of one name per line"`

	FetchFlags `embed:""`
	ModelFlags `embed:""`
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	svc, closeFn, err := newService(deps, c.FetchFlags, c.ModelFlags)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := svc.Ready(); err != nil {
		return err
	}

	products, err := svc.ExtractLabels(deps.Ctx, c.URL)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetEscapeHTML(false)
		return enc.Encode(map[string][]string{"products": products})
	}
	if len(products) == 0 {
		fmt.Fprintln(deps.Stdout, "No products found")
		return nil
	}
	for _, p := range products {
		fmt.Fprintln(deps.Stdout, p)
	}
	return nil
}

// newService wires the extraction service. A recognizer that fails to
// load leaves the model unloaded with the reason recorded, so callers
// decide whether that is fatal.
func newService(deps *Dependencies, ff FetchFlags, mf ModelFlags) (*extract.Service, func(), error) {
	fetcher, extractor, err := openFetcher(deps, ff)
	if err != nil {
		return nil, nil, err
	}

	model := extract.NewModel()
	if err := model.Load(mf.Name(), func() (prodner.Recognizer, error) {
		return openRecognizer(deps, mf)
	}); err != nil {
		deps.logger().Warn("recognizer not loaded", "model", mf.Name(), "err", err)
	}

	svc := &extract.Service{
		Fetcher:    fetcher,
		Normalizer: goquery.NewNormalizer(),
		Extractor:  extractor,
		Model:      model,
	}
	return svc, func() { _ = fetcher.Close() }, nil
}
