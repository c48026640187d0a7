package definition

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidDefinition is returned when a definition cannot be mounted.
var ErrInvalidDefinition = errors.New("definition: invalid definition")

// Normalize trims names, fills default labels, types and image titles, and
// rejects definitions without fields or with empty or duplicate field names.
func Normalize(def Definition) (Definition, error) {
	out := Definition{
		ID:          strings.TrimSpace(def.ID),
		Hint:        strings.TrimSpace(def.Hint),
		SubmitLabel: strings.TrimSpace(def.SubmitLabel),
	}

	if len(def.Fields) == 0 {
		return Definition{}, fmt.Errorf("%w: no fields", ErrInvalidDefinition)
	}

	seen := make(map[string]struct{}, len(def.Fields))
	out.Fields = make([]Field, 0, len(def.Fields))
	for i, field := range def.Fields {
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			return Definition{}, fmt.Errorf("%w: field %d has no name", ErrInvalidDefinition, i)
		}
		if _, dup := seen[field.Name]; dup {
			return Definition{}, fmt.Errorf("%w: duplicate field %q", ErrInvalidDefinition, field.Name)
		}
		seen[field.Name] = struct{}{}

		field.Label = strings.TrimSpace(field.Label)
		if field.Label == "" {
			field.Label = humanize(field.Name)
		}
		switch FieldType(strings.ToLower(strings.TrimSpace(string(field.Type)))) {
		case "", FieldTypeText:
			field.Type = FieldTypeText
		case FieldTypePassword:
			field.Type = FieldTypePassword
		case FieldTypeEmail:
			field.Type = FieldTypeEmail
		default:
			return Definition{}, fmt.Errorf("%w: field %q has unsupported type %q", ErrInvalidDefinition, field.Name, field.Type)
		}
		out.Fields = append(out.Fields, field)
	}

	for _, image := range def.Images {
		image.Alt = strings.TrimSpace(image.Alt)
		image.Src = strings.TrimSpace(image.Src)
		if image.Src == "" {
			continue
		}
		if strings.TrimSpace(image.Title) == "" && image.Alt != "" {
			image.Title = image.Alt + " title"
		}
		out.Images = append(out.Images, image)
	}

	return out, nil
}

// humanize turns "first_name" or "firstName" into "First name".
func humanize(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(' ')
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			b.WriteRune(' ')
		}
		b.WriteRune(unicode.ToLower(r))
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	label := strings.Join(strings.Fields(b.String()), " ")
	if label == "" {
		return name
	}
	runes := []rune(label)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
