package definition

// FieldType is the input type rendered for a field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypePassword FieldType = "password"
	FieldTypeEmail    FieldType = "email"
)

// Field describes one labeled input.
type Field struct {
	Name         string    `json:"name" yaml:"name"`
	Label        string    `json:"label,omitempty" yaml:"label,omitempty"`
	Type         FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Placeholder  string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	AutoComplete string    `json:"autocomplete,omitempty" yaml:"autocomplete,omitempty"`
	Required     bool      `json:"required,omitempty" yaml:"required,omitempty"`
}

// Masked reports whether the field value must not be echoed back.
func (f Field) Masked() bool {
	return f.Type == FieldTypePassword
}

// Image is a decorative image shown above the inputs.
type Image struct {
	Alt    string `json:"alt" yaml:"alt"`
	Src    string `json:"src" yaml:"src"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
}

// Definition describes the form a surface mounts: its test id, hint text,
// images, submit label and ordered fields.
type Definition struct {
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	Hint        string  `json:"hint,omitempty" yaml:"hint,omitempty"`
	SubmitLabel string  `json:"submit,omitempty" yaml:"submit,omitempty"`
	Images      []Image `json:"images,omitempty" yaml:"images,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// FieldNames returns the field names in declaration order.
func (d Definition) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, field := range d.Fields {
		names = append(names, field.Name)
	}
	return names
}

// Field looks up a field by name.
func (d Definition) Field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// RequiredFields returns the names of fields marked required.
func (d Definition) RequiredFields() []string {
	var names []string
	for _, field := range d.Fields {
		if field.Required {
			names = append(names, field.Name)
		}
	}
	return names
}

// Login returns the canonical sign-in form.
func Login() Definition {
	def := Definition{
		ID:   "loginform",
		Hint: "Sign in to your account",
		Images: []Image{
			{Alt: "octopus", Src: "assets/octopus.svg", Width: 36, Height: 36},
			{Alt: "alembic", Src: "assets/alembic.svg", Width: 36, Height: 36},
			{Alt: "test tube", Src: "assets/test-tube.svg", Width: 36, Height: 36},
		},
		Fields: []Field{
			{
				Name:         "username",
				Label:        "Username",
				Type:         FieldTypeText,
				Placeholder:  "Username or email",
				AutoComplete: "username",
				Required:     true,
			},
			{
				Name:         "password",
				Label:        "Password",
				Type:         FieldTypePassword,
				Placeholder:  "Password",
				AutoComplete: "current-password",
				Required:     true,
			},
		},
	}
	normalized, err := Normalize(def)
	if err != nil {
		panic(err)
	}
	return normalized
}
