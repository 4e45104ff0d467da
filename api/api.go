// Package api holds the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// OpenAPI is the OpenAPI 2.0 document served at /swagger/doc.json.
//
//go:embed swagger/users.swagger.json
var OpenAPI []byte
