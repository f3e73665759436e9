// Package speech is a thin HTTP client for a text-to-speech endpoint. It
// enforces the configured text length bound and returns the raw audio bytes
// produced by the voice service.
package speech
