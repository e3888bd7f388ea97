// Package docs registers the API description of the survey service with swag.
package docs

import (
	"net/http"

	"github.com/swaggo/swag"
)

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "SessionToken": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/survey": {
            "get": {
                "summary": "Questionnaire schema",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sessions": {
            "post": {
                "summary": "Start a form session",
                "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/form": {
            "get": {
                "summary": "Current session view",
                "security": [{"SessionToken": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Session not found"}}
            },
            "delete": {
                "summary": "End the session",
                "security": [{"SessionToken": []}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/form/answers/{key}": {
            "put": {
                "summary": "Replace the answer to a question",
                "security": [{"SessionToken": []}],
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"value": {}}}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid answer"}, "404": {"description": "Unknown question"}}
            }
        },
        "/form/answers/{key}/options": {
            "post": {
                "summary": "Check or uncheck a multiple-choice option",
                "security": [{"SessionToken": []}],
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"value": {"type": "string"}, "checked": {"type": "boolean"}}}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/form/ratings/{key}": {
            "post": {
                "summary": "Pick a rating; low ratings open the justification prompt",
                "security": [{"SessionToken": []}],
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"rating": {"type": "string"}}}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/form/ratings/{key}/edit": {
            "post": {
                "summary": "Reopen the justification prompt for a committed low rating",
                "security": [{"SessionToken": []}],
                "parameters": [{"name": "key", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Not a low rating"}}
            }
        },
        "/form/prompt": {
            "post": {
                "summary": "Submit the justification for the pending low rating",
                "security": [{"SessionToken": []}],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"text": {"type": "string"}}}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Empty justification"}, "409": {"description": "No pending prompt"}}
            },
            "delete": {
                "summary": "Cancel the justification prompt",
                "security": [{"SessionToken": []}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "No pending prompt"}}
            }
        },
        "/form/submit": {
            "post": {
                "summary": "Submit the form",
                "security": [{"SessionToken": []}],
                "responses": {"202": {"description": "Accepted"}, "409": {"description": "Submission in progress"}, "422": {"description": "Form incomplete"}}
            }
        },
        "/ws/form": {
            "get": {
                "summary": "WebSocket feed of session changes",
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Customer Satisfaction Survey API",
	Description:      "Form sessions for the customer satisfaction survey: answers, low-rating justifications and submission.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Handler serves the registered API description
func Handler(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"api description unavailable"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
