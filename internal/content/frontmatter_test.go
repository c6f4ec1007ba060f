package content_test

import (
	"testing"

	"obsidiana-backend/internal/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontmatter(t *testing.T) {
	t.Run("splits meta and body", func(t *testing.T) {
		src := []byte("---\ntitle: Hola\nlang: es\n---\n# Cuerpo\n")
		meta, body, err := content.SplitFrontmatter(src)
		require.NoError(t, err)
		assert.Equal(t, "title: Hola\nlang: es\n", string(meta))
		assert.Equal(t, "# Cuerpo\n", string(body))
	})

	t.Run("tolerates BOM and CRLF", func(t *testing.T) {
		src := []byte("\xEF\xBB\xBF---\r\ntitle: x\r\n---\r\nbody")
		meta, body, err := content.SplitFrontmatter(src)
		require.NoError(t, err)
		assert.Equal(t, "title: x\r\n", string(meta))
		assert.Equal(t, "body", string(body))
	})

	t.Run("closing fence at end of file", func(t *testing.T) {
		meta, body, err := content.SplitFrontmatter([]byte("---\ntitle: x\n---"))
		require.NoError(t, err)
		assert.Equal(t, "title: x\n", string(meta))
		assert.Empty(t, body)
	})

	t.Run("missing opening fence", func(t *testing.T) {
		_, _, err := content.SplitFrontmatter([]byte("# Just markdown\n"))
		assert.ErrorIs(t, err, content.ErrNoFrontmatter)
	})

	t.Run("empty file", func(t *testing.T) {
		_, _, err := content.SplitFrontmatter(nil)
		assert.ErrorIs(t, err, content.ErrNoFrontmatter)
	})

	t.Run("unterminated block", func(t *testing.T) {
		_, _, err := content.SplitFrontmatter([]byte("---\ntitle: x\nbody\n"))
		assert.ErrorIs(t, err, content.ErrUnterminated)
	})
}
