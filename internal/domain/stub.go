package domain

// Param is one declared stub parameter.
type Param struct {
	Name string `json:"name"`
	// Type is the declared type as shown to the model, e.g. "list[str]".
	Type string `json:"type"`
}

// Descriptor identifies one remote-backed function. It is built once at
// declaration time and never mutated.
type Descriptor struct {
	Name    string     `json:"name"`
	Params  []Param    `json:"params"`
	Returns ResultKind `json:"-"`
	// ReturnType is the declared return type as shown to the model. When
	// empty the kind's name is used.
	ReturnType string `json:"returns"`
	Doc        string `json:"doc"`
}

// ReturnTypeName returns the display name of the declared return type.
func (d *Descriptor) ReturnTypeName() string {
	if d.ReturnType != "" {
		return d.ReturnType
	}
	if d.Returns == KindUnknown {
		return ""
	}
	return d.Returns.String()
}

// ParamNames returns the parameter names in declaration order.
func (d *Descriptor) ParamNames() []string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	return names
}
