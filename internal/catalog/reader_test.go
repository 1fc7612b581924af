package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseExport(t *testing.T) {
	t.Run("parses a valid export", func(t *testing.T) {
		path := writeExport(t, `{
			"items": [
				{
					"identifier": "https://example.edu/handle/10024/11207",
					"bitstream": "https://example.edu/bitstream/10024/11207/thesis.pdf",
					"metadata": [
						{"element": "title", "value": "An Example Thesis"},
						{"element": "date", "qualifier": "issued", "value": "2020-05-01"}
					]
				},
				{"metadata": []}
			]
		}`)

		exp, err := ParseExport(path)

		require.NoError(t, err)
		require.Len(t, exp.Items, 2)
		assert.Equal(t, "https://example.edu/handle/10024/11207", exp.Items[0].Identifier)
		assert.Len(t, exp.Items[0].Metadata, 2)
		assert.Empty(t, exp.Items[1].Identifier)
	})

	t.Run("rejects a file failing schema validation", func(t *testing.T) {
		// metadata entries must carry element and value
		path := writeExport(t, `{"items": [{"metadata": [{"qualifier": "issued"}]}]}`)

		_, err := ParseExport(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "EXPORT_INVALID")
	})

	t.Run("rejects a file without an items array", func(t *testing.T) {
		path := writeExport(t, `{"records": []}`)

		_, err := ParseExport(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "EXPORT_INVALID")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := ParseExport(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}
