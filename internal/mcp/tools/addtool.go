package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after checking that the output type's zero value
// passes the schema the SDK infers for it.
//
// Panics if the check fails.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema validates that the zero value of T passes the JSON schema
// the SDK would infer from it. A nil slice marshals as null while the schema
// says array, and a result table typed as types.Mapping is inferred as an
// array of fields while it marshals as an object; both fail here instead of
// on the first call.
//
// No-ops for the untyped "any" output or if schema inference itself fails
// (the SDK reports those).
func CheckOutputSchema[T any](toolName string) {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return
	}
	elem := rt
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	if paths := findCustomJSONFields(elem, nil, make(map[reflect.Type]bool)); len(paths) > 0 {
		panic(fmt.Sprintf(
			"AddTool %q: output type %s has fields with custom JSON encoding at %s\n"+
				"  the inferred schema will not match what is sent\n"+
				"  Fix: type the field as any and fill it with types.ToAny",
			toolName, elem, strings.Join(paths, ", "),
		))
	}

	schema, err := jsonschema.ForType(elem, &jsonschema.ForOptions{})
	if err != nil {
		return
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return
	}

	data, err := json.Marshal(reflect.Zero(elem).Interface())
	if err != nil {
		return
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return
	}

	if err := resolved.Validate(&v); err != nil {
		panic(fmt.Sprintf(
			"AddTool %q: zero value of output type %s fails schema validation: %v\n"+
				"  JSON: %s\n"+
				"  Fix: add `omitzero` to nil-defaulting slice fields, or initialize them to empty slices",
			toolName, elem, err, data,
		))
	}
}

var marshalerType = reflect.TypeFor[json.Marshaler]()

// findCustomJSONFields returns the paths of fields whose type implements
// json.Marshaler. Covers json.RawMessage and types.Mapping.
func findCustomJSONFields(t reflect.Type, path []string, visited map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if len(path) > 0 && (t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType)) {
		return []string{strings.Join(path, ".")}
	}

	if visited[t] {
		return nil
	}
	visited[t] = true
	defer delete(visited, t)

	var found []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			found = append(found, findCustomJSONFields(f.Type, append(path, f.Name), visited)...)
		}
	case reflect.Slice, reflect.Array:
		found = append(found, findCustomJSONFields(t.Elem(), append(path, "[]"), visited)...)
	case reflect.Map:
		found = append(found, findCustomJSONFields(t.Elem(), append(path, "[value]"), visited)...)
	}
	return found
}
