// Package catalog parses institutional-repository metadata exports and
// normalizes their items into the ordered field/value records the dataset
// builder consumes.
package catalog

// Entry is one raw metadata entry of a catalog item, as exported by the
// repository system (Dublin Core style element/qualifier pairs).
type Entry struct {
	Element   string `json:"element"`
	Qualifier string `json:"qualifier,omitempty"`
	Value     string `json:"value"`
}

// Item is one exported catalog record describing a document.
type Item struct {
	Identifier string  `json:"identifier,omitempty"` // canonical URI
	Bitstream  string  `json:"bitstream,omitempty"`  // document location URL
	Metadata   []Entry `json:"metadata"`
}

// Export is one metadata export file.
type Export struct {
	Items []Item `json:"items"`
}

// FieldValue is a normalized (field, value) pair. Field is either a bare
// element name or an "element/qualifier" composite, exactly as configured in
// the allow-list. Repeatable fields appear once per value.
type FieldValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Record is a fully normalized catalog item: identifier, retrievable
// location, and the allow-listed metadata in serialization order.
type Record struct {
	Identifier string       `json:"identifier"`
	Location   string       `json:"location"`
	Fields     []FieldValue `json:"fields"`
}
