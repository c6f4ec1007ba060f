package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoFrontmatter = errors.New("missing frontmatter block")
	ErrUnterminated  = errors.New("frontmatter block is not terminated")

	frontmatterFence = []byte("---")
	utf8BOM          = []byte{0xEF, 0xBB, 0xBF}
)

// SplitFrontmatter separates the leading "---" delimited YAML block from the
// markdown body.
func SplitFrontmatter(src []byte) (meta, body []byte, err error) {
	src = bytes.TrimPrefix(src, utf8BOM)

	first, rest, ok := cutLine(src)
	if !ok && len(first) == 0 {
		return nil, nil, ErrNoFrontmatter
	}
	if !bytes.Equal(bytes.TrimRight(first, " \t\r"), frontmatterFence) {
		return nil, nil, ErrNoFrontmatter
	}

	offset := 0
	for {
		line, next, more := cutLine(rest[offset:])
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), frontmatterFence) {
			meta = rest[:offset]
			body = next
			return meta, body, nil
		}
		if !more {
			return nil, nil, ErrUnterminated
		}
		offset = len(rest) - len(next)
	}
}

// cutLine returns the first line of b (without the newline) and the rest.
// ok reports whether a newline was found.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i], b[i+1:], true
	}
	return b, nil, false
}

// decodeStrict decodes a YAML mapping into out. Unknown keys are rejected
// when strict is set.
func decodeStrict(meta []byte, out interface{}, strict bool) error {
	dec := yaml.NewDecoder(bytes.NewReader(meta))
	dec.KnownFields(strict)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("frontmatter block is empty")
		}
		return err
	}
	return nil
}
