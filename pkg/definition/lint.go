package definition

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const extensionNamespace = "x-loginform"

// Violation is a misuse of the x-loginform extensions found by LintOpenAPI.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// ExtensionKeys lists the supported x-loginform extensions.
func ExtensionKeys() []string {
	return []string{extensionAutoComplete, extensionLabel, extensionOrder, extensionPlaceholder}
}

// LintOpenAPI reports unsupported or mistyped x-loginform extensions on
// operations, request bodies and request body properties. Results are sorted
// by location.
func LintOpenAPI(ctx context.Context, data []byte) ([]Violation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("definition: load openapi document: %w", err)
	}
	if spec.Paths == nil {
		return nil, nil
	}

	var result []Violation
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			if operation == nil {
				continue
			}
			id := operation.OperationID
			if id == "" {
				id = method + " " + path
			}
			base := []string{"operation", id}
			result = append(result, lintExtensions(base, operation.Extensions)...)

			if operation.RequestBody == nil || operation.RequestBody.Value == nil {
				continue
			}
			body := append(base[:len(base):len(base)], "requestBody")
			result = append(result, lintExtensions(body, operation.RequestBody.Value.Extensions)...)

			schema := requestSchema(operation.RequestBody)
			if schema == nil {
				continue
			}
			for name, ref := range schema.Properties {
				if ref == nil || ref.Value == nil {
					continue
				}
				location := append(body[:len(body):len(body)], "properties."+name)
				result = append(result, lintExtensions(location, ref.Value.Extensions)...)
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Location == result[j].Location {
			return result[i].Message < result[j].Message
		}
		return result[i].Location < result[j].Location
	})
	return result, nil
}

func lintExtensions(path []string, extensions map[string]any) []Violation {
	var result []Violation
	for key, value := range extensions {
		if key != extensionNamespace && !strings.HasPrefix(key, extensionNamespace+"-") {
			continue
		}
		location := strings.Join(path, " > ")
		switch key {
		case extensionLabel, extensionPlaceholder, extensionAutoComplete:
			if _, ok := value.(string); !ok {
				result = append(result, Violation{
					Location: location,
					Message:  fmt.Sprintf("value for %q must be a string (got %T)", key, value),
				})
			}
		case extensionOrder:
			if _, ok := extensionNumber(extensions, key); !ok {
				result = append(result, Violation{
					Location: location,
					Message:  fmt.Sprintf("value for %q must be a number (got %T)", key, value),
				})
			}
		default:
			result = append(result, Violation{
				Location: location,
				Message:  fmt.Sprintf("unsupported extension key %q (supported: %s)", key, strings.Join(ExtensionKeys(), ", ")),
			})
		}
	}
	return result
}
