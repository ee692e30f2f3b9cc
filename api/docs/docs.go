// Package docs embeds the hand-maintained Swagger 2.0 description of the HTTP API.
package docs

import _ "embed"

// SpecPath is where the router serves the document; the Swagger UI loads it from here.
const SpecPath = "/api-docs/swagger.json"

//go:embed swagger.json
var OpenAPI []byte
