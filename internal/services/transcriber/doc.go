// Package transcriber turns uploaded audio into transcript text by shelling
// out to ffmpeg (format normalization) and the whisper CLI (speech-to-text).
// The full run is bounded by a wall-clock timeout and each request works in
// its own temp directory.
package transcriber
