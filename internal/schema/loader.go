package schema

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// ErrMalformedSchema wraps any parse failure. Callers get a single opaque
// error; there is no partial-result recovery.
var ErrMalformedSchema = errors.New("malformed form schema")

// Loader resolves a schema name (an actor, e.g. "personas") to a parsed
// FormSchema, decoupling consumers from the source document format.
type Loader interface {
	Load(ctx context.Context, name string) (*FormSchema, error)
}

// CSVLoader reads <name>.csv schema documents from a filesystem. Line 1 is a
// header row, each subsequent line one field definition.
type CSVLoader struct {
	fsys fs.FS
}

func NewCSVLoader(fsys fs.FS) *CSVLoader {
	return &CSVLoader{fsys: fsys}
}

func (l *CSVLoader) Load(_ context.Context, name string) (*FormSchema, error) {
	f, err := l.fsys.Open(name + ".csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV parses a delimited schema document. Unlike the historical naive
// comma split, fields may be quoted and contain commas. Booleans are true iff
// the cell is literally "True"; options are split on "|"; the actor is taken
// from the first data row.
func ParseCSV(r io.Reader) (*FormSchema, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformedSchema)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	cell := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	s := &FormSchema{}
	seen := map[string]bool{}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSchema, err)
		}

		field := FormField{
			FieldKey:    cell(record, "field_key"),
			Label:       cell(record, "label"),
			Type:        cell(record, "type"),
			Required:    cell(record, "required") == "True",
			Description: cell(record, "description"),
			Example:     cell(record, "example"),
			Upload:      cell(record, "upload") == "True",
			Category:    cell(record, "category"),
		}
		if opts := cell(record, "options"); opts != "" {
			field.Options = strings.Split(opts, "|")
		}

		// All rows are assumed to belong to the first row's actor.
		if s.Actor == "" {
			s.Actor = cell(record, "actor")
		}

		s.Fields = append(s.Fields, field)
		if !seen[field.Category] {
			seen[field.Category] = true
			s.Categories = append(s.Categories, field.Category)
		}
	}

	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("%w: no field definitions", ErrMalformedSchema)
	}
	return s, nil
}

// JSONLoader reads <name>.json documents containing a serialized FormSchema.
// Categories, when omitted, are derived from the fields in order.
type JSONLoader struct {
	fsys fs.FS
}

func NewJSONLoader(fsys fs.FS) *JSONLoader {
	return &JSONLoader{fsys: fsys}
}

func (l *JSONLoader) Load(_ context.Context, name string) (*FormSchema, error) {
	f, err := l.fsys.Open(name + ".json")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s FormSchema
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSchema, err)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("%w: no field definitions", ErrMalformedSchema)
	}
	if len(s.Categories) == 0 {
		seen := map[string]bool{}
		for _, f := range s.Fields {
			if !seen[f.Category] {
				seen[f.Category] = true
				s.Categories = append(s.Categories, f.Category)
			}
		}
	}
	return &s, nil
}
