package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kirjasto-labs/metacorpus/internal/common"
)

// ParseExport reads and validates one metadata export file. A file that does
// not match the export schema is rejected before any item is looked at.
func ParseExport(path string) (*Export, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", path, err)
	}
	if err := validateAgainstSchema(exportSchema(), raw); err != nil {
		return nil, common.NewAppError("EXPORT_INVALID", fmt.Sprintf("export %s failed schema validation", path), err)
	}
	var exp Export
	if err := json.Unmarshal(raw, &exp); err != nil {
		return nil, fmt.Errorf("decode export %s: %w", path, err)
	}
	return &exp, nil
}
