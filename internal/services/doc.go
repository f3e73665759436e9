// Package services holds cross-cutting helpers shared by the external service
// clients: the error classification taxonomy used to map failures to API
// status codes, and context helpers for request-scoped logging fields.
package services
