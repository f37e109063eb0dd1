package gemini

import (
	"context"

	"github.com/fwojciec/prodner"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ prodner.TokenCounter = (*TokenCounter)(nil)

// TokenCounter estimates what a page's text would cost as recognizer input.
// It runs the Gemini tokenizer locally, so batch runs need no API key.
type TokenCounter struct {
	model string
	tok   *tokenizer.LocalTokenizer
}

// NewTokenCounter returns a counter for model, or for DefaultModel when
// model is empty. An unknown model is EINVALID.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, prodner.Errorf(prodner.EINVALID, "no local tokenizer for model %q: %v", model, err)
	}
	return &TokenCounter{model: model, tok: tok}, nil
}

// Model returns the model whose tokenizer is used.
func (tc *TokenCounter) Model() string {
	return tc.model
}

// CountTokens counts the tokens text takes as the prompt's page content.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
