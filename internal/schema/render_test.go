package schema

import "testing"

func TestControlFor(t *testing.T) {
	tests := []struct {
		name   string
		field  FormField
		kind   string
		flavor string
		step   string
	}{
		{"text", FormField{Type: TypeText}, ControlText, FlavorText, ""},
		{"unknown type falls back to text", FormField{Type: "address"}, ControlText, FlavorText, ""},
		{"email", FormField{Type: TypeEmail}, ControlText, FlavorEmail, ""},
		{"phone", FormField{Type: TypePhone}, ControlText, FlavorTel, ""},
		{"date", FormField{Type: TypeDate}, ControlDate, "", ""},
		{"integer", FormField{Type: TypeInteger}, ControlNumber, "", "1"},
		{"number", FormField{Type: TypeNumber}, ControlNumber, "", "0.01"},
		{"enum", FormField{Type: TypeEnum, Options: []string{"A", "B"}}, ControlSelect, "", ""},
		{"array", FormField{Type: TypeArray, Options: []string{"A"}}, ControlChecklist, "", ""},
		{"upload wins over type", FormField{Type: TypeEnum, Upload: true}, ControlFile, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ControlFor(tt.field)
			if c.Kind != tt.kind || c.Flavor != tt.flavor || c.Step != tt.step {
				t.Errorf("ControlFor = kind %q flavor %q step %q, want %q %q %q",
					c.Kind, c.Flavor, c.Step, tt.kind, tt.flavor, tt.step)
			}
		})
	}
}

func TestSelectPrependsBlankOption(t *testing.T) {
	c := ControlFor(FormField{Type: TypeEnum, Options: []string{"Colombia", "Mexico"}})
	if len(c.Options) != 3 || c.Options[0] != "" || c.Options[1] != "Colombia" {
		t.Errorf("options = %v", c.Options)
	}
}

func TestBuildControlsGroupsByCategory(t *testing.T) {
	groups := BuildControls(testSchema())
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if groups[0].Category != "identity" || len(groups[0].Controls) != 4 {
		t.Errorf("identity group = %+v", groups[0])
	}
	if groups[2].Category != "documents" || groups[2].Controls[0].Kind != ControlFile {
		t.Errorf("documents group = %+v", groups[2])
	}
}
