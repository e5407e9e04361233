package output

import (
	"encoding/json"
	"io"

	"github.com/nikolliervin/code-unc/internal/model"
)

// RenderJSON writes the full result as indented JSON.
func RenderJSON(w io.Writer, res *model.ReviewResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}
