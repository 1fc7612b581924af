package excerpt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirjasto-labs/metacorpus/internal/pagetext"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestExtract(t *testing.T) {
	opts := Options{MaxPages: 4, Margin: 2, TextMin: 500, TextLimit: 1500}

	t.Run("never exceeds limits", func(t *testing.T) {
		src := pagetext.Memory{words(400), words(400), words(400), words(400), words(400), words(400), words(400)}
		ex, err := Extract(src, opts, nil)

		require.NoError(t, err)
		assert.LessOrEqual(t, ex.WordCount, opts.TextLimit)
		assert.LessOrEqual(t, len(ex.Pages), opts.MaxPages)
	})

	t.Run("stops after one dense page", func(t *testing.T) {
		// 520 words is under the limit and at/above the minimum, so page 1
		// alone satisfies the target.
		src := pagetext.Memory{words(520), words(300)}
		ex, err := Extract(src, opts, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, len(ex.Pages))
		assert.Equal(t, 520, ex.WordCount)
	})

	t.Run("rejected page does not end the walk", func(t *testing.T) {
		// Page 1 would breach the limit; page 2 still fits.
		src := pagetext.Memory{words(300), words(1300), words(250)}
		ex, err := Extract(src, opts, nil)

		require.NoError(t, err)
		require.Equal(t, 2, len(ex.Pages))
		assert.Equal(t, words(300), ex.Pages[0])
		assert.Equal(t, words(250), ex.Pages[1])
		assert.Equal(t, 550, ex.WordCount)
	})

	t.Run("never looks past the margin window", func(t *testing.T) {
		counting := &countingSource{pages: make([]string, 20)}
		for i := range counting.pages {
			counting.pages[i] = words(10)
		}
		_, err := Extract(counting, opts, nil)

		require.NoError(t, err)
		assert.LessOrEqual(t, counting.maxIndex, opts.MaxPages+opts.Margin-1)
	})

	t.Run("empty document yields empty excerpt", func(t *testing.T) {
		ex, err := Extract(pagetext.Memory{}, opts, nil)

		require.NoError(t, err)
		assert.Empty(t, ex.Pages)
		assert.Zero(t, ex.WordCount)
		assert.Equal(t, "", ex.Text())
	})

	t.Run("all pages rejected yields empty excerpt", func(t *testing.T) {
		src := pagetext.Memory{words(2000), words(2000)}
		ex, err := Extract(src, opts, nil)

		require.NoError(t, err)
		assert.Empty(t, ex.Pages)
		assert.Zero(t, ex.WordCount)
	})

	t.Run("joins accepted pages with a newline", func(t *testing.T) {
		src := pagetext.Memory{"alpha beta", "gamma"}
		ex, err := Extract(src, Options{MaxPages: 2, Margin: 0, TextMin: 100, TextLimit: 100}, nil)

		require.NoError(t, err)
		assert.Equal(t, "alpha beta\ngamma", ex.Text())
	})

	t.Run("page read failure is a hard error", func(t *testing.T) {
		src := failingSource{}
		_, err := Extract(src, opts, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "read page 0")
	})
}

type countingSource struct {
	pages    []string
	maxIndex int
}

func (c *countingSource) NumPages() int { return len(c.pages) }

func (c *countingSource) Page(i int) (string, error) {
	if i > c.maxIndex {
		c.maxIndex = i
	}
	return c.pages[i], nil
}

type failingSource struct{}

func (failingSource) NumPages() int { return 3 }

func (failingSource) Page(int) (string, error) {
	return "", assert.AnError
}
