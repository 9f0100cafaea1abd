package schema

// Control kinds produced by the renderer.
const (
	ControlFile      = "file"
	ControlSelect    = "select"
	ControlChecklist = "checklist"
	ControlDate      = "date"
	ControlNumber    = "number"
	ControlText      = "text"
)

// Text input flavors for ControlText.
const (
	FlavorText  = "text"
	FlavorEmail = "email"
	FlavorTel   = "tel"
)

// Control describes one typed input derived from a field definition. It is
// what a client renders; the engine itself stays headless.
type Control struct {
	Field       FormField `json:"field"`
	Kind        string    `json:"kind"`
	Flavor      string    `json:"flavor,omitempty"`  // ControlText only
	Step        string    `json:"step,omitempty"`    // ControlNumber only
	Options     []string  `json:"options,omitempty"` // select/checklist choices
	Placeholder string    `json:"placeholder,omitempty"`
}

type ControlGroup struct {
	Category string    `json:"category"`
	Controls []Control `json:"controls"`
}

// ControlFor maps a field definition to its input control. The upload flag
// wins over the declared type.
func ControlFor(f FormField) Control {
	c := Control{Field: f, Placeholder: f.Example}

	if f.Upload {
		c.Kind = ControlFile
		return c
	}

	switch f.Type {
	case TypeEnum:
		c.Kind = ControlSelect
		// Blank "unselected" placeholder option first.
		c.Options = append([]string{""}, f.Options...)
	case TypeArray:
		c.Kind = ControlChecklist
		c.Options = f.Options
	case TypeDate:
		c.Kind = ControlDate
	case TypeInteger:
		c.Kind = ControlNumber
		c.Step = "1"
	case TypeNumber:
		c.Kind = ControlNumber
		c.Step = "0.01"
	default:
		c.Kind = ControlText
		switch f.Type {
		case TypeEmail:
			c.Flavor = FlavorEmail
		case TypePhone:
			c.Flavor = FlavorTel
		default:
			c.Flavor = FlavorText
		}
	}
	return c
}

// BuildControls renders the whole schema as category groups of controls.
func BuildControls(s *FormSchema) []ControlGroup {
	groups := make([]ControlGroup, 0, len(s.Categories))
	for _, g := range s.GroupByCategory() {
		cg := ControlGroup{Category: g.Category}
		for _, f := range g.Fields {
			cg.Controls = append(cg.Controls, ControlFor(f))
		}
		groups = append(groups, cg)
	}
	return groups
}
