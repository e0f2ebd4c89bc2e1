package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/surajmandalcell/asrpro-sub001/internal/audio"
	"github.com/surajmandalcell/asrpro-sub001/pkg/types"
)

// backendPath is the transcription endpoint exposed by the serving containers.
const backendPath = "/asr"

// handleTranscribe accepts a multipart upload ("model" field + "file" part),
// sniffs the audio format, ensures a running instance, and relays the file to
// the instance's HTTP port. A successful relay counts as activity.
func handleTranscribe(svc Service, w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "multipart/form-data") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be multipart/form-data")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	modelID := strings.TrimSpace(r.FormValue("model"))
	if modelID == "" {
		writeJSONError(w, http.StatusBadRequest, "model is required")
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	head := make([]byte, audio.SniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		writeJSONError(w, http.StatusBadRequest, "file part is empty")
		return
	}
	head = head[:n]
	format, err := audio.Validate(head)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	began := time.Now()
	inst, err := svc.Start(ctx, modelID)
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := lifecycleStatus(err)
		countLifecycleError("start", status)
		zlog.Warn().Str("model", modelID).Int("status", status).Err(err).Msg("transcribe start rejected")
		writeJSONError(w, status, err.Error())
		return
	}

	// Stream head+rest to the backend without buffering the whole upload.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("audio_file", hdr.Filename)
		if err == nil {
			_, err = io.Copy(part, io.MultiReader(bytes.NewReader(head), file))
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d%s?output=json", inst.HostPort, backendPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		zlog.Error().Str("model", modelID).Err(err).Msg("transcription backend unreachable")
		writeJSONError(w, http.StatusBadGateway, "transcription backend unreachable")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		zlog.Error().Str("model", modelID).Int("backend_status", resp.StatusCode).Msg("transcription backend error")
		writeJSONError(w, http.StatusBadGateway,
			fmt.Sprintf("transcription backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		return
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		writeJSONError(w, http.StatusBadGateway, "transcription backend returned malformed JSON")
		return
	}

	svc.Touch(modelID)
	zlog.Info().Str("model", modelID).Str("format", string(format)).
		Dur("dur", time.Since(began)).Msg("transcribe ok")
	writeJSON(w, http.StatusOK, types.TranscribeResponse{
		Model:  modelID,
		Format: string(format),
		Result: result,
	})
}
