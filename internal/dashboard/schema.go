package dashboard

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// StoreSchema returns a JSON Schema for dashboard.json, for editor validation
// and for documenting the format.
func StoreSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{ExpandedStruct: true}
	sch := r.Reflect(&Store{})
	sch.Title = "toolctl dashboard store"
	sch.Description = "仪表板状态文件（工具实例选择与供应商选择）。"
	return sch
}

// MarshalSchema indents the schema to JSON bytes.
func MarshalSchema(sch *jsonschema.Schema) ([]byte, error) {
	return json.MarshalIndent(sch, "", "  ")
}
