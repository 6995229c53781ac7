// Package schema describes and validates the shape of a successful
// extraction before it is shown or exported.
package schema

import (
	docschema "github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OkSchema returns the JSON Schema every successful extraction must satisfy:
// two objects of string|null values and a string preview. Keys inside the
// objects are not fixed.
func OkSchema() *docschema.Schema {
	props := orderedmap.New[string, *docschema.Schema]()
	props.Set("allergens", valueTable("Allergen name to presence (present, absent, may_contain, no_data)."))
	props.Set("nutrition_per_100g", valueTable("Nutrient name to amount with unit, per 100 g."))
	props.Set("preview", &docschema.Schema{
		Type:        "string",
		Description: "Leading text extracted from the document.",
	})

	return &docschema.Schema{
		Version:    docschema.Version,
		Title:      "Extraction result",
		Type:       "object",
		Properties: props,
		Required:   []string{"allergens", "nutrition_per_100g"},
	}
}

func valueTable(description string) *docschema.Schema {
	return &docschema.Schema{
		Type:        "object",
		Description: description,
		AdditionalProperties: &docschema.Schema{
			AnyOf: []*docschema.Schema{
				{Type: "string"},
				{Type: "null"},
			},
		},
	}
}
