// Package middleware provides the HTTP middleware stack: trace IDs with a
// request-scoped logger, request logging, Prometheus metrics and security
// headers.
package middleware
