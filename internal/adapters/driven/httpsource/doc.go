// Package httpsource is the HTTP client of a remote observation source.
//
// Client implements driven.VisibilitySource over the /api/v1/visibility
// API served by `geovis serve`. Every failure that is not a local error
// is normalised into a *domain.TransportError: network failures carry
// Status 0, non-2xx responses carry the response status and the server's
// detail message.
package httpsource
