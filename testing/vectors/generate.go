package vectors

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteFile exports the built-in vectors as indented JSON, for consumption
// by implementations in other languages.
func WriteFile(path string) error {
	data, err := json.MarshalIndent(File(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode vectors: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	return nil
}
