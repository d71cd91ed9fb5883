package wire

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of a snapshot reply, indented.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.ReflectFromType(reflect.TypeOf(Snapshot{}))
	schema.Version = ""
	schema.Title = "Minesweeper Snapshot"
	schema.Description = "Authoritative board state returned by /jsonnew and /json."
	return json.MarshalIndent(schema, "", "  ")
}
