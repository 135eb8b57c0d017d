package outfmt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// ApplyJQ filters marshaled JSON through a jq expression. Output is what jq
// itself would print: one marshaled result per line, no envelope around it.
func ApplyJQ(data []byte, expression string) ([]byte, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expression, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding result for jq: %w", err)
	}

	var out bytes.Buffer

	iter := query.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if jqErr, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq: %w", jqErr)
		}

		line, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding jq result: %w", err)
		}

		if out.Len() > 0 {
			out.WriteByte('\n')
		}

		out.Write(line)
	}

	return out.Bytes(), nil
}
