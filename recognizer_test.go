package prodner_test

import (
	"context"
	"testing"

	"github.com/fwojciec/prodner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGazetteerRecognizer_Recognize(t *testing.T) {
	t.Parallel()

	t.Run("labels every whole-word occurrence", func(t *testing.T) {
		t.Parallel()

		r := prodner.NewGazetteerRecognizer(prodner.LabelProduct, []string{"Pixel 8", "iPhone"})
		spans, err := r.Recognize(context.Background(), "The iPhone beats the pixel 8, says an iPhoneFan.")

		require.NoError(t, err)
		assert.Equal(t, []prodner.Span{
			{Start: 4, End: 10, Label: "PRODUCT", Text: "iPhone"},
			{Start: 21, End: 28, Label: "PRODUCT", Text: "pixel 8"},
		}, spans)
	})

	t.Run("prefers the longer of overlapping names", func(t *testing.T) {
		t.Parallel()

		r := prodner.NewGazetteerRecognizer(prodner.LabelProduct, []string{"Apple", "Apple Watch", "Watch"})
		spans, err := r.Recognize(context.Background(), "Buy Apple Watch now")

		require.NoError(t, err)
		assert.Equal(t, []prodner.Span{{Start: 4, End: 15, Label: "PRODUCT", Text: "Apple Watch"}}, spans)
	})

	t.Run("ignores blank and duplicate names", func(t *testing.T) {
		t.Parallel()

		r := prodner.NewGazetteerRecognizer(prodner.LabelProduct, []string{"", "  ", "Kindle", "kindle"})
		spans, err := r.Recognize(context.Background(), "Kindle")

		require.NoError(t, err)
		assert.Len(t, spans, 1)
	})

	t.Run("returns context error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := prodner.NewGazetteerRecognizer(prodner.LabelProduct, []string{"Kindle"})
		_, err := r.Recognize(ctx, "Kindle")

		require.ErrorIs(t, err, context.Canceled)
	})
}
