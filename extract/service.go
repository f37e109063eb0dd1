// Package extract is the single-URL path from a page address to the product
// names mentioned on it.
package extract

import (
	"context"
	"fmt"
	"sort"

	"github.com/fwojciec/prodner"
)

// Service fetches a page, normalizes it and runs the loaded recognizer.
type Service struct {
	Fetcher    prodner.Fetcher
	Normalizer prodner.Normalizer
	Extractor  prodner.Extractor
	Model      *Model
}

// Ready returns EUNAVAILABLE unless a recognizer is loaded.
func (s *Service) Ready() error {
	if s.Model == nil {
		return prodner.Errorf(prodner.EUNAVAILABLE, "model not loaded")
	}
	_, err := s.Model.Recognizer()
	return err
}

// Status reports which recognizer is loaded.
func (s *Service) Status() ModelStatus {
	if s.Model == nil {
		return ModelStatus{}
	}
	return s.Model.Status()
}

// ExtractLabels returns the unique PRODUCT span texts found on the page at
// url, sorted. Readiness is checked before any network activity.
func (s *Service) ExtractLabels(ctx context.Context, url string) ([]string, error) {
	rec, err := s.ExtractRecord(ctx, url)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	labels := []string{}
	for _, span := range rec.Spans {
		if span.Label != prodner.LabelProduct || seen[span.Text] {
			continue
		}
		seen[span.Text] = true
		labels = append(labels, span.Text)
	}
	sort.Strings(labels)
	return labels, nil
}

// ExtractRecord returns the normalized page text with every recognized span.
func (s *Service) ExtractRecord(ctx context.Context, url string) (*prodner.AnnotationRecord, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}
	recognizer, err := s.Model.Recognizer()
	if err != nil {
		return nil, err
	}

	text, err := s.text(ctx, url)
	if err != nil {
		return nil, err
	}

	spans, err := recognizer.Recognize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("recognize %s: %w", url, err)
	}
	if spans == nil {
		spans = []prodner.Span{}
	}
	return &prodner.AnnotationRecord{SourceURL: url, Text: text, Spans: spans}, nil
}

func (s *Service) text(ctx context.Context, url string) (string, error) {
	html, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	content, err := prodner.ExtractContent(s.Extractor, html)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", url, err)
	}
	text := s.Normalizer.Normalize(content)
	if text == "" {
		return "", prodner.Errorf(prodner.EFETCH, "could not retrieve or extract text from the URL")
	}
	return text, nil
}
