package catalog

import (
	"log/slog"
	"strings"

	"github.com/kirjasto-labs/metacorpus/internal/common"
)

// dateElement marks the field whose values are truncated to a bare year.
const dateElement = "date"

// RecordReader normalizes raw catalog items against a configured field
// allow-list. Fields outside the list are never emitted.
type RecordReader struct {
	fields []string
	logger *slog.Logger
}

func NewRecordReader(fields []string, logger *slog.Logger) *RecordReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordReader{fields: fields, logger: logger}
}

// Read normalizes one item. The returned fields follow the allow-list order;
// repeatable fields keep their catalog order within a field. An item without
// an identifier or without a document location is an error for that item
// only; callers skip it and move on.
func (r *RecordReader) Read(item Item) (Record, error) {
	if strings.TrimSpace(item.Identifier) == "" {
		return Record{}, common.NewAppError("ITEM_NO_IDENTIFIER", "catalog item has no identifier", common.ErrInvalidInput)
	}
	if strings.TrimSpace(item.Bitstream) == "" {
		return Record{}, common.NewAppError("ITEM_NO_LOCATION", "catalog item "+item.Identifier+" has no document location", common.ErrInvalidInput)
	}

	rec := Record{Identifier: item.Identifier, Location: item.Bitstream}
	for _, field := range r.fields {
		element, qualifier := splitField(field)
		for _, entry := range item.Metadata {
			if entry.Element != element || entry.Qualifier != qualifier {
				continue
			}
			value := entry.Value
			if element == dateElement {
				value = normalizeDate(value)
			}
			rec.Fields = append(rec.Fields, FieldValue{Field: field, Value: value})
		}
	}
	return rec, nil
}

func splitField(field string) (element, qualifier string) {
	if i := strings.IndexByte(field, '/'); i >= 0 {
		return field[:i], field[i+1:]
	}
	return field, ""
}

// normalizeDate truncates a date value to its first 4 characters (year only).
// Deliberately lossy; month and day are never carried downstream.
func normalizeDate(v string) string {
	if len(v) > 4 {
		return v[:4]
	}
	return v
}
