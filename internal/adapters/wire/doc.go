// Package wire holds the JSON shapes of the /api/v1/visibility API.
//
// The HTTP server encodes domain values with these types and the HTTP
// source decodes them back, so both sides of the boundary share one
// definition. Field names are snake_case.
package wire
