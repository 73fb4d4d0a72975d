package domain

// RequestType is one tenant-defined classification bucket in the service desk
// catalog, unique by ID within a tenant.
type RequestType struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	SLAHours int    `json:"slaHours,omitempty"`
}

// FieldType is the closed set of value shapes a request-type field can take.
type FieldType string

const (
	FieldTypeText       FieldType = "TEXT"
	FieldTypeTextArea   FieldType = "TEXTAREA"
	FieldTypeSelect     FieldType = "SELECT"
	FieldTypeNumber     FieldType = "NUMBER"
	FieldTypeDate       FieldType = "DATE"
	FieldTypeMultiValue FieldType = "MULTI_VALUE"
)

// FieldSpec declares one ticket attribute of a request type.
type FieldSpec struct {
	FieldID     string    `json:"fieldId"`
	DisplayName string    `json:"name"`
	Required    bool      `json:"required"`
	Type        FieldType `json:"type"`
	Options     []string  `json:"options,omitempty"`
}

// FieldValueMap maps field identifiers to synthesized values. Values are
// whatever JSON the model produced; multi-value fields are always arrays.
type FieldValueMap map[string]any

// CoerceArrays wraps scalar values of multi-value fields into single-element
// arrays. Fields absent from the map stay absent.
func (m FieldValueMap) CoerceArrays(specs []FieldSpec) {
	for _, spec := range specs {
		if spec.Type != FieldTypeMultiValue {
			continue
		}
		val, ok := m[spec.FieldID]
		if !ok {
			continue
		}
		if _, isArray := val.([]any); !isArray {
			m[spec.FieldID] = []any{val}
		}
	}
}
