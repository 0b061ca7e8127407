package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/arthur-debert/stencil/pkg/errors"
)

func parseJSON(data []byte) (*Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Manifest{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	root, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.ErrManifestParse, "unexpected content after the top-level object")
	}

	fields, ok := root.([]field)
	if !ok {
		return nil, errors.Newf(errors.ErrManifestInvalid, "manifest root must be an object, got %T", root)
	}
	return fromFields(fields)
}

// readJSONValue decodes the next value token by token so object keys keep
// their document order
func readJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			fields := []field{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
				}
				value, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				fields = append(fields, field{key: key, value: value})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return fields, nil
		case '[':
			items := []any{}
			for dec.More() {
				value, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return items, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		// string, bool or nil
		return t, nil
	}
}
