package definition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	extensionLabel        = "x-loginform-label"
	extensionPlaceholder  = "x-loginform-placeholder"
	extensionAutoComplete = "x-loginform-autocomplete"
	extensionOrder        = "x-loginform-order"
)

// ErrOperationNotFound is returned when FromOpenAPI cannot find the
// requested operation.
var ErrOperationNotFound = errors.New("definition: operation not found")

// FromOpenAPI derives a definition from the request body schema of an
// OpenAPI 3 operation. Each top-level property becomes a field; properties
// with format "password" render as password inputs. Fields are ordered by
// the x-loginform-order extension, then by name.
func FromOpenAPI(ctx context.Context, data []byte, operationID string) (Definition, error) {
	if err := ctx.Err(); err != nil {
		return Definition{}, err
	}
	operationID = strings.TrimSpace(operationID)
	if operationID == "" {
		return Definition{}, errors.New("definition: operation id is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return Definition{}, fmt.Errorf("definition: load openapi document: %w", err)
	}

	operation := findOperation(spec, operationID)
	if operation == nil {
		return Definition{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	schema := requestSchema(operation.RequestBody)
	if schema == nil || len(schema.Properties) == 0 {
		return Definition{}, fmt.Errorf("%w: operation %q has no request body properties", ErrInvalidDefinition, operationID)
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	type orderedField struct {
		field Field
		order float64
	}
	ordered := make([]orderedField, 0, len(schema.Properties))
	for name, ref := range schema.Properties {
		field := Field{Name: name, Type: FieldTypeText}
		order := math.Inf(1)
		if ref != nil && ref.Value != nil {
			prop := ref.Value
			switch prop.Format {
			case "password":
				field.Type = FieldTypePassword
			case "email":
				field.Type = FieldTypeEmail
			}
			field.Label = extensionString(prop.Extensions, extensionLabel)
			if field.Label == "" {
				field.Label = prop.Title
			}
			field.Placeholder = extensionString(prop.Extensions, extensionPlaceholder)
			field.AutoComplete = extensionString(prop.Extensions, extensionAutoComplete)
			if value, ok := extensionNumber(prop.Extensions, extensionOrder); ok {
				order = value
			}
		}
		_, field.Required = required[name]
		ordered = append(ordered, orderedField{field: field, order: order})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].order != ordered[j].order {
			return ordered[i].order < ordered[j].order
		}
		return ordered[i].field.Name < ordered[j].field.Name
	})

	def := Definition{
		ID:   operationID,
		Hint: operation.Summary,
	}
	for _, item := range ordered {
		def.Fields = append(def.Fields, item.field)
	}
	return Normalize(def)
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	if spec == nil || spec.Paths == nil {
		return nil
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range item.Operations() {
			if operation != nil && operation.OperationID == operationID {
				return operation
			}
		}
	}
	return nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "application/json", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func extensionString(extensions map[string]any, key string) string {
	raw, ok := extensions[key]
	if !ok {
		return ""
	}
	if value, ok := raw.(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func extensionNumber(extensions map[string]any, key string) (float64, bool) {
	switch value := extensions[key].(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	default:
		return 0, false
	}
}
