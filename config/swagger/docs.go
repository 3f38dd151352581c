// Package swagger registers the API description served under /swagger.
// Regenerate the paths with `swag init -o config/swagger` after changing
// handler annotations.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/api/ping": {"get": {"tags": ["test"], "summary": "Endpoint just pings the server", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/api/quiz/questions": {"get": {"tags": ["quiz"], "summary": "Trivia questions", "parameters": [{"type": "string", "name": "category", "in": "query"}, {"type": "string", "name": "difficulty", "in": "query"}, {"type": "integer", "name": "amount", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}}},
        "/api/quiz/categories": {"get": {"tags": ["quiz"], "summary": "Trivia categories", "responses": {"200": {"description": "OK"}}}},
        "/api/rooms": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Create a match room", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/api/rooms/join": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Join a match room", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/api/rooms/random": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Random matchmaking", "responses": {"200": {"description": "OK"}}}},
        "/api/rooms/start": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Start a match", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}, "502": {"description": "Bad Gateway"}}}},
        "/api/rooms/finish": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Finish a match", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/api/rooms/answer": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Submit one answer", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/api/rooms/answer-bulk": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Submit all answers at once", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/api/rooms/status/{id}": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Room status", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/rooms/questions": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Room questions", "parameters": [{"type": "string", "name": "roomId", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/api/rooms/leaderboard/{id}": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Room leaderboard", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/rooms/leaderboard/{id}/submit": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Submit a final score", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/rooms/qr/{id}": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["rooms"], "summary": "Room invite QR code", "produces": ["image/png"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/users/me": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["users"], "summary": "Current user", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/users/register": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["users"], "summary": "Register the caller", "responses": {"200": {"description": "OK"}, "201": {"description": "Created"}}}},
        "/api/users/search": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["users"], "summary": "Search users", "parameters": [{"type": "string", "name": "query", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/users/suggested": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["users"], "summary": "Suggested users", "responses": {"200": {"description": "OK"}}}},
        "/api/friends/request": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["friends"], "summary": "Send a friend request", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/api/friends/request/{requestId}": {"put": {"security": [{"ApiKeyAuth": []}], "tags": ["friends"], "summary": "Accept or decline a friend request", "parameters": [{"type": "string", "name": "requestId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/api/friends/list": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["friends"], "summary": "List friends", "responses": {"200": {"description": "OK"}}}},
        "/api/friends/pending": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["friends"], "summary": "List pending friend requests", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Trivium API",
	Description:      "Gin-Gonic server for the Trivium multiplayer quiz",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
