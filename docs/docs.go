package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Reservation Insight",
    "description": "Uploads a reservation event export and returns a model-generated insight",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {"get": {"tags": ["health"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}}},
    "/api/upload": {"post": {
      "tags": ["upload"],
      "summary": "Upload an event export",
      "consumes": ["multipart/form-data"],
      "produces": ["application/json"],
      "parameters": [
        {"name": "file", "in": "formData", "type": "file", "required": true},
        {"name": "instruction", "in": "formData", "type": "string", "required": false},
        {"name": "wait", "in": "query", "type": "string", "required": false}
      ],
      "responses": {"200": {"description": "Finished session state"}, "202": {"description": "Accepted session state"}, "400": {"description": "No file or not a CSV"}, "422": {"description": "Upload failed"}}
    }},
    "/api/session": {"get": {"tags": ["session"], "summary": "Current session state", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/api/prompt": {"get": {"tags": ["prompt"], "summary": "Prompt template", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/api/runs/latest": {"get": {"tags": ["runs"], "summary": "Latest run", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "404": {"description": "No runs"}}}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
