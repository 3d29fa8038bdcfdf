package swaggerkit

import (
	"encoding/json"
	"net/http"

	"orderlens/internal/services/api/docs"
)

// readDoc renders the registered template; tests swap it
var readDoc = docs.SwaggerInfo.ReadDoc

var errorSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"status_code": map[string]any{"type": "integer"},
		"status":      map[string]any{"type": "string"},
		"code":        map[string]any{"type": "integer"},
		"error":       map[string]any{"type": "string"},
		"field":       map[string]any{"type": "string"},
		"request_id":  map[string]any{"type": "string"},
	},
}

// decorate adds what every operation shares: the server base path, the
// error envelope schema and a default response pointing at it
func decorate(spec map[string]any, basePath string) {
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": basePath}}
	}
	comps, _ := spec["components"].(map[string]any)
	if comps == nil {
		comps = map[string]any{}
		spec["components"] = comps
	}
	schemas, _ := comps["schemas"].(map[string]any)
	if schemas == nil {
		schemas = map[string]any{}
		comps["schemas"] = schemas
	}
	schemas["ErrorResponse"] = errorSchema

	def := map[string]any{
		"description": "error envelope",
		"content": map[string]any{"application/json": map[string]any{
			"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
		}},
	}
	paths, _ := spec["paths"].(map[string]any)
	for _, item := range paths {
		ops, _ := item.(map[string]any)
		for _, op := range ops {
			o, _ := op.(map[string]any)
			resp, _ := o["responses"].(map[string]any)
			if resp != nil && resp["default"] == nil {
				resp["default"] = def
			}
		}
	}
}

func serveDocJSON(basePath string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(readDoc()), &spec); err != nil {
			http.Error(w, "openapi document is not valid JSON", http.StatusInternalServerError)
			return
		}
		decorate(spec, basePath)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}
