// Package input resolves CLI payload arguments that may reference files or
// stdin instead of carrying the value inline.
package input

import (
	"io"
	"os"
	"strings"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// maxPayloadSize caps file and stdin payloads (10 MB). Batch-update JSON for
// a document edit has no business being larger.
const maxPayloadSize = 10 * 1024 * 1024

// Resolve interprets a payload argument:
//   - "@path" reads the file at path
//   - "-" reads stdin
//   - anything else is returned as-is (literal passthrough)
func Resolve(value string) (string, error) {
	switch {
	case value == "-":
		return readLimited(os.Stdin, "stdin")
	case strings.HasPrefix(value, "@"):
		path := value[1:]

		f, err := os.Open(path)
		if err != nil {
			return "", errfmt.Wrap(errfmt.NotFound, err, "opening payload file")
		}
		defer f.Close()

		return readLimited(f, path)
	default:
		return value, nil
	}
}

func readLimited(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPayloadSize+1))
	if err != nil {
		return "", errfmt.Wrap(errfmt.IOError, err, "reading "+name)
	}

	if len(data) > maxPayloadSize {
		return "", errfmt.New(errfmt.ValidationError, "%s exceeds the %d byte payload limit", name, maxPayloadSize)
	}

	return string(data), nil
}
