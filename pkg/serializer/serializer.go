// Package serializer converts models to and from JSON-normalised attribute maps.
package serializer

import jsoniter "github.com/json-iterator/go"

var (
	// JSON is the jsoniter instance used for all attribute maps
	JSON = jsoniter.ConfigCompatibleWithStandardLibrary

	// Marshal is a shorthand for JSON.Marshal
	Marshal = JSON.Marshal

	// Unmarshal is a shorthand for JSON.Unmarshal
	Unmarshal = JSON.Unmarshal

	// Strict rejects keys without a matching field
	Strict = jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		DisallowUnknownFields:  true,
	}.Froze()
)

// ToMap serializes v into a map whose values are JSON-normalised
// (maps, slices, float64, string, bool, nil).
func ToMap(v interface{}) (map[string]interface{}, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	attrs := map[string]interface{}{}
	if err := Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// FromMap overwrites the fields of dest present in attrs.
// A key without a matching field is an error.
func FromMap(attrs map[string]interface{}, dest interface{}) error {
	data, err := Marshal(attrs)
	if err != nil {
		return err
	}
	return Strict.Unmarshal(data, dest)
}

// Normalize round-trips v through JSON so that equal values compare equal
// regardless of their concrete Go types (int vs float64, struct vs map).
func Normalize(v interface{}) (interface{}, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
