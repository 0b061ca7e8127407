package ui

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/arthur-debert/stencil/pkg/errors"
)

// jsonRenderer provides JSON output for machine consumption
type jsonRenderer struct {
	encoder *json.Encoder
}

func newJSONRenderer(w io.Writer) *jsonRenderer {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return &jsonRenderer{encoder: encoder}
}

// RenderResult implements Renderer
func (r *jsonRenderer) RenderResult(result interface{}) error {
	return r.encoder.Encode(result)
}

// RenderError implements Renderer
func (r *jsonRenderer) RenderError(err error) error {
	obj := map[string]interface{}{
		"error": err.Error(),
		"code":  string(errors.GetErrorCode(err)),
	}
	var se *errors.StencilError
	if stderrors.As(err, &se) && len(se.Details) > 0 {
		obj["details"] = se.Details
	}
	return r.encoder.Encode(obj)
}

// RenderMessage implements Renderer
func (r *jsonRenderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
