package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/attachment"
	"github.com/starford/esurat/internal/storage"
)

// maxUploadBytes leaves room for multipart framing around the largest file.
const maxUploadBytes = attachment.MaxSize + 1<<20

// UploadAttachment handles POST /api/attachments (multipart/form-data, field "file").
//
//	@Summary	Upload a scanned document
//	@Tags		attachments
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		file	formData	file	true	"JPG/PNG or PDF"
//	@Success	201		{object}	AttachmentUploadResponse
//	@Failure	400		{object}	errResponse
//	@Router		/attachments [post]
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, apperr.Invalid("Ukuran file terlalu besar."))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, apperr.Invalid("Berkas wajib dipilih."))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name, mediaType, err := h.deps.Blobs.Put(data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AttachmentUploadResponse{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(data)),
		URL:       attachment.URLPrefix + name,
	})
}

// AttachmentServer returns the handler for GET /attachments/{name}.
func AttachmentServer(blobs storage.Blobs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		data, mediaType, err := blobs.Get(name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", mediaType)
		w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
		http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
	}
}

// releaseAttachments deletes uploaded files among refs that no letter
// references any more. Letter id is judged by keep, its current attachment
// list, since the replica may not have caught up with the write yet.
func (h *Handler) releaseAttachments(id string, keep, refs []string) {
	if h.deps.Blobs == nil || len(refs) == 0 {
		return
	}
	inUse := make(map[string]bool)
	for _, ref := range keep {
		inUse[ref] = true
	}
	for _, l := range h.deps.Directory.ListLetters() {
		if l.ID == id {
			continue
		}
		for _, ref := range l.Attachments {
			inUse[ref] = true
		}
	}
	for _, ref := range refs {
		name, ok := strings.CutPrefix(ref, attachment.URLPrefix)
		if !ok || inUse[ref] {
			continue
		}
		inUse[ref] = true
		if err := h.deps.Blobs.Delete(name); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			slog.Warn("attachment cleanup failed",
				slog.String("name", name),
				slog.String("error", err.Error()))
		}
	}
}
