// Package schema implements the CSV-driven dynamic form engine: loading
// delimited schema documents, mapping fields to typed input controls, and
// validating collected values before submission.
package schema

// Field types recognized by the renderer and validator. Anything else is
// treated as plain text.
const (
	TypeText    = "text"
	TypeEmail   = "email"
	TypePhone   = "phone"
	TypeDate    = "date"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeEnum    = "enum"
	TypeArray   = "array"
)

type FormField struct {
	FieldKey    string   `json:"field_key"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Description string   `json:"description"`
	Example     string   `json:"example"`
	Options     []string `json:"options,omitempty"`
	Upload      bool     `json:"upload"`
	Category    string   `json:"category"`
}

type FormSchema struct {
	Actor      string      `json:"actor"`
	Fields     []FormField `json:"fields"`
	Categories []string    `json:"categories"` // insertion order from the source document
}

// CategoryGroup holds a category's fields in schema order.
type CategoryGroup struct {
	Category string
	Fields   []FormField
}

// GroupByCategory returns the schema's fields grouped per category,
// categories in source-document insertion order.
func (s *FormSchema) GroupByCategory() []CategoryGroup {
	byCategory := make(map[string][]FormField, len(s.Categories))
	for _, f := range s.Fields {
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}

	groups := make([]CategoryGroup, 0, len(s.Categories))
	for _, c := range s.Categories {
		groups = append(groups, CategoryGroup{Category: c, Fields: byCategory[c]})
	}
	return groups
}

// Field returns the field with the given key, or nil.
func (s *FormSchema) Field(key string) *FormField {
	for i := range s.Fields {
		if s.Fields[i].FieldKey == key {
			return &s.Fields[i]
		}
	}
	return nil
}
