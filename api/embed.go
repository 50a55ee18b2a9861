// Package api embeds the OpenAPI document describing the portal backend
// endpoints this client consumes.
package api

import _ "embed"

//go:embed openapi3.yml
var SpecYAML []byte
