// Package gemini implements product recognition and token counting with
// Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/prodner"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// maxPromptBytes bounds the page text sent to the model.
const maxPromptBytes = 200_000

// Generator is the subset of *genai.Models used by Recognizer.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Ensure Recognizer implements prodner.Recognizer at compile time.
var _ prodner.Recognizer = (*Recognizer)(nil)

// Recognizer asks Gemini for the product names mentioned in a text and
// locates every whole-word occurrence of them.
type Recognizer struct {
	models Generator
	model  string
	label  string
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithModel sets the Gemini model name.
func WithModel(model string) Option {
	return func(r *Recognizer) {
		r.model = model
	}
}

// WithLabel sets the label attached to recognized spans.
func WithLabel(label string) Option {
	return func(r *Recognizer) {
		r.label = label
	}
}

// NewRecognizer creates a Recognizer. Pass client.Models from a
// *genai.Client.
func NewRecognizer(models Generator, opts ...Option) *Recognizer {
	r := &Recognizer{models: models, model: DefaultModel, label: prodner.LabelProduct}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recognize returns labeled spans for the product names Gemini reports.
// Names that do not occur in text as whole words are dropped.
func (r *Recognizer) Recognize(ctx context.Context, text string) ([]prodner.Span, error) {
	if strings.TrimSpace(text) == "" {
		return []prodner.Span{}, nil
	}
	if r.models == nil {
		return nil, prodner.Errorf(prodner.EUNAVAILABLE, "gemini client not configured")
	}

	result, err := r.models.GenerateContent(ctx, r.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: BuildUserPrompt(text)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, prodner.Errorf(prodner.EINTERNAL, "gemini returned nil result")
	}

	names, err := ParseNames(result.Text())
	if err != nil {
		return nil, err
	}
	return prodner.NewGazetteerRecognizer(r.label, names).Recognize(ctx, text)
}

// BuildConfig returns the GenerateContentConfig for recognition calls.
// The response is constrained to a JSON array of strings.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You extract product names from web page text. A product is a specific commercial item a customer could buy, such as \"Apple Watch\" or \"Galaxy S24\". Do not return company names, categories or generic nouns. Copy each name exactly as it appears in the text. Return an empty array when there are none.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	}
}

// BuildUserPrompt builds the prompt carrying the page text.
func BuildUserPrompt(text string) string {
	if len(text) > maxPromptBytes {
		cut := maxPromptBytes
		for cut > 0 && text[cut]&0xC0 == 0x80 {
			cut--
		}
		text = text[:cut]
	}
	var sb strings.Builder
	sb.WriteString("<text>\n")
	sb.WriteString(text)
	sb.WriteString("\n</text>\n\n")
	sb.WriteString("List the product names mentioned in the text.")
	return sb.String()
}

// ParseNames decodes the model response into a list of names.
func ParseNames(response string) ([]string, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	var names []string
	if err := json.Unmarshal([]byte(response), &names); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	return names, nil
}
