// Package docs registers the OpenAPI document for the API with swag. Keep it
// in step with the @Router annotations on the handlers
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
  "openapi": "3.0.3",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "tags": [
    {"name": "Analysis", "description": "Order extraction jobs and CSV export"},
    {"name": "Meta", "description": "Health, readiness and build info"}
  ],
  "paths": {
    "/analysis/jobs": {
      "post": {
        "tags": ["Analysis"],
        "summary": "Start an analysis job from a pasted transcript",
        "operationId": "analysisSubmit",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/SubmitInput"}}}},
        "responses": {"202": {"description": "accepted", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/SubmitResponse"}}}}}
      },
      "get": {
        "tags": ["Analysis"],
        "summary": "Recent jobs, newest first",
        "operationId": "analysisList",
        "parameters": [{"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 0}}],
        "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/JobSummary"}}}}}}
      }
    },
    "/analysis/jobs/file": {
      "post": {
        "tags": ["Analysis"],
        "summary": "Start an analysis job from an exported chat file (UTF-8 or EUC-KR)",
        "operationId": "analysisSubmitFile",
        "requestBody": {"required": true, "content": {"multipart/form-data": {"schema": {
          "type": "object",
          "required": ["file"],
          "properties": {
            "file": {"type": "string", "format": "binary"},
            "start_date": {"type": "string", "example": "2024-07-01"},
            "end_date": {"type": "string", "example": "2024-07-31"},
            "shop_name": {"type": "string"}
          }
        }}}},
        "responses": {"202": {"description": "accepted", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/SubmitResponse"}}}}}
      }
    },
    "/analysis/jobs/{id}": {
      "get": {
        "tags": ["Analysis"],
        "summary": "Job status, and the result once completed",
        "operationId": "analysisGet",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
        "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Job"}}}}}
      }
    },
    "/analysis/jobs/{id}/artifacts": {
      "get": {
        "tags": ["Analysis"],
        "summary": "Stored model prompts and replies for a job",
        "operationId": "analysisArtifacts",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}},
          {"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 0}}
        ],
        "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/Artifact"}}}}}}
      }
    },
    "/analysis/csv": {
      "post": {
        "tags": ["Analysis"],
        "summary": "Render a result as three base64 encoded CSV tables",
        "operationId": "analysisCSV",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Result"}}}},
        "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/CSVResponse"}}}}}
      }
    },
    "/meta/health": {"get": {"tags": ["Meta"], "summary": "Health check", "operationId": "metaHealth",
      "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/HealthResponse"}}}}}}},
    "/meta/ready": {"get": {"tags": ["Meta"], "summary": "Readiness probe with dependency checks", "operationId": "metaReady",
      "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReadyResponse"}}}}}}},
    "/meta/version": {"get": {"tags": ["Meta"], "summary": "Build, version and rule pack info", "operationId": "metaVersion",
      "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/BuildInfo"}}}}}}},
    "/meta/service": {"get": {"tags": ["Meta"], "summary": "Service info and uptime", "operationId": "metaService",
      "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ServiceResponse"}}}}}}}
  },
  "components": {
    "schemas": {
      "SubmitInput": {
        "type": "object",
        "required": ["conversation"],
        "properties": {
          "conversation": {"type": "string"},
          "start_date": {"type": "string", "maxLength": 32, "example": "2024-07-01"},
          "end_date": {"type": "string", "maxLength": 32, "example": "2024-07-31"},
          "shop_name": {"type": "string", "maxLength": 100}
        }
      },
      "SubmitResponse": {"type": "object", "properties": {"job_id": {"type": "string", "format": "uuid"}}},
      "JobSummary": {
        "type": "object",
        "properties": {
          "job_id": {"type": "string", "format": "uuid"},
          "status": {"$ref": "#/components/schemas/JobStatus"},
          "started_at": {"type": "string", "format": "date-time"},
          "shop_name": {"type": "string"},
          "start_date": {"type": "string"},
          "end_date": {"type": "string"},
          "file_name": {"type": "string"},
          "conversation_length": {"type": "integer"},
          "has_result": {"type": "boolean"}
        }
      },
      "Job": {
        "type": "object",
        "properties": {
          "job_id": {"type": "string", "format": "uuid"},
          "status": {"$ref": "#/components/schemas/JobStatus"},
          "started_at": {"type": "string", "format": "date-time"},
          "finished_at": {"type": "string", "format": "date-time"},
          "shop_name": {"type": "string"},
          "start_date": {"type": "string"},
          "end_date": {"type": "string"},
          "file_name": {"type": "string"},
          "conversation_length": {"type": "integer"},
          "result": {"$ref": "#/components/schemas/Result"},
          "error": {"type": "string"}
        }
      },
      "JobStatus": {"type": "string", "enum": ["processing", "analyzing", "completed", "failed"]},
      "Record": {
        "type": "object",
        "properties": {
          "time": {"type": "string", "example": "2024-07-01 10:00"},
          "customer": {"type": "string"},
          "item": {"type": "string"},
          "quantity": {"type": "integer"},
          "note": {"type": "string"}
        }
      },
      "ItemSummary": {
        "type": "object",
        "properties": {
          "item": {"type": "string"},
          "total_quantity": {"type": "integer"},
          "customers": {"type": "string"}
        }
      },
      "Result": {
        "type": "object",
        "properties": {
          "time_based_orders": {"type": "array", "items": {"$ref": "#/components/schemas/Record"}},
          "customer_based_orders": {"type": "array", "items": {"$ref": "#/components/schemas/Record"}},
          "item_based_summary": {"type": "array", "items": {"$ref": "#/components/schemas/ItemSummary"}},
          "table_summary": {
            "type": "object",
            "properties": {
              "headers": {"type": "array", "items": {"type": "string"}},
              "rows": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}}
            }
          },
          "order_pattern_analysis": {
            "type": "object",
            "properties": {
              "peak_hours": {"type": "array", "items": {"type": "string"}},
              "popular_items": {"type": "array", "items": {"type": "string"}},
              "sold_out_items": {"type": "array", "items": {"type": "string"}}
            }
          },
          "shop_name": {"type": "string"}
        }
      },
      "CSVResponse": {
        "type": "object",
        "properties": {
          "time_based_csv": {"type": "string", "format": "byte"},
          "item_based_csv": {"type": "string", "format": "byte"},
          "customer_based_csv": {"type": "string", "format": "byte"}
        }
      },
      "Artifact": {
        "type": "object",
        "properties": {
          "job_id": {"type": "string"},
          "kind": {"type": "string", "enum": ["preprocessed", "primary_raw", "primary_fragment", "fallback_raw", "catalog"]},
          "chunk": {"type": "integer"},
          "part": {"type": "integer"},
          "body": {"type": "string"},
          "at": {"type": "string", "format": "date-time"}
        }
      },
      "HealthResponse": {
        "type": "object",
        "properties": {"ok": {"type": "boolean"}, "service": {"type": "string"}, "started": {"type": "string"}, "now": {"type": "string"}}
      },
      "ReadyResponse": {
        "type": "object",
        "properties": {
          "status": {"type": "string", "enum": ["ok", "degraded", "fail"]},
          "checks": {"type": "array", "items": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "status": {"type": "string"}, "error": {"type": "string"}}
          }},
          "now": {"type": "string"}
        }
      },
      "BuildInfo": {
        "type": "object",
        "properties": {
          "service": {"type": "string"}, "version": {"type": "string"}, "commit": {"type": "string"},
          "date": {"type": "string"}, "rules_version": {"type": "integer"}
        }
      },
      "ServiceResponse": {
        "type": "object",
        "properties": {"name": {"type": "string"}, "started": {"type": "string"}, "uptime": {"type": "integer"}}
      }
    }
  }
}`

// SwaggerInfo is the registered document; main may adjust Version before serving
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	BasePath:         "/api/v1",
	Title:            "Orderlens API",
	Description:      "Turns KakaoTalk group chat exports into structured order tables",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
