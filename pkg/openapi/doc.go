// Package openapi turns the request body of an OpenAPI 3 operation into a
// single-step wizard definition. Documents are parsed with kin-openapi and can
// be read from disk, an fs.FS, or over HTTP.
package openapi
