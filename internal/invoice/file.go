package invoice

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/adminfin-dev/adminfin/internal/model"
)

// Load reads an extracted-invoice JSON document.
func Load(path string) (model.ExtractedInvoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ExtractedInvoice{}, fmt.Errorf("reading invoice: %w", err)
	}
	var inv model.ExtractedInvoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.ExtractedInvoice{}, fmt.Errorf("parsing invoice %s: %w", path, err)
	}
	return inv, nil
}
