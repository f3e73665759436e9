package daemon

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// maxUploadBytes bounds a single audio upload.
const maxUploadBytes = 25 << 20

// readAudioUpload accepts either a multipart form with an "audio" file field
// or a raw request body.
func readAudioUpload(r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("audio")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

func (s *apiServer) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !s.daemon.transcriber.Available() {
		s.writeError(w, http.StatusServiceUnavailable, "speech-to-text engine unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	audio, err := readAudioUpload(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read audio upload")
		return
	}
	if len(audio) == 0 {
		s.writeError(w, http.StatusBadRequest, "audio required")
		return
	}

	text, err := s.daemon.transcriber.Transcribe(r.Context(), audio)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *apiServer) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	audio, err := s.daemon.speech.Synthesize(r.Context(), req.Text)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	// []byte marshals as base64 in JSON.
	s.writeJSON(w, http.StatusOK, struct {
		Audio []byte `json:"audio"`
	}{Audio: audio})
}
