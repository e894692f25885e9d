package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"docassist/internal/config"
	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/domain/services"
	docsysSvc "docassist/internal/domain/services/docsystem"
	"docassist/internal/httputil"

	"github.com/google/uuid"
)

// UploadHandler accepts multipart uploads, stores the file and creates the row
type UploadHandler struct {
	store        services.FileStore
	extractor    docsysSvc.ContentExtractor
	docService   docsysSvc.DocumentService
	audioService docsysSvc.AudioService
	logger       *slog.Logger
}

// NewUploadHandler creates an upload handler. store may be nil, in which case
// uploads answer 503. extractor may be nil, in which case only the content
// form field fills a document.
func NewUploadHandler(
	store services.FileStore,
	extractor docsysSvc.ContentExtractor,
	docService docsysSvc.DocumentService,
	audioService docsysSvc.AudioService,
	logger *slog.Logger,
) *UploadHandler {
	return &UploadHandler{
		store:        store,
		extractor:    extractor,
		docService:   docService,
		audioService: audioService,
		logger:       logger,
	}
}

// uploadedFile is a fully read multipart file
type uploadedFile struct {
	name        string
	contentType string
	data        []byte
}

// readUpload parses the form and reads the "file" part into memory
func (h *UploadHandler) readUpload(w http.ResponseWriter, r *http.Request) (*uploadedFile, bool) {
	if h.store == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "file storage is not configured")
		return nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file exceeds the 50MB limit")
			return nil, false
		}
		httputil.RespondError(w, http.StatusBadRequest, "expected multipart form data")
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file is required")
		return nil, false
	}
	defer file.Close()

	if header.Size > config.MaxUploadSize {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file exceeds the 50MB limit")
		return nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "could not read file")
		return nil, false
	}

	return &uploadedFile{
		name:        header.Filename,
		contentType: contentTypeOf(header, data),
		data:        data,
	}, true
}

func contentTypeOf(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(data)
}

func (h *UploadHandler) put(w http.ResponseWriter, r *http.Request, caller *models.Caller, f *uploadedFile) (*services.StoredFile, bool) {
	stored, err := h.store.Put(r.Context(), caller, f.name, f.contentType, bytes.NewReader(f.data), int64(len(f.data)))
	if err != nil {
		h.logger.Error("upload failed", "user_id", caller.UserID, "filename", f.name, "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "file storage failed")
		return nil, false
	}
	return stored, true
}

// UploadDocument stores a file and creates a document pointing at it.
// Text, markdown and HTML files also become the document's content.
// POST /api/documents/upload (multipart: file, title?, folder_id?, content?)
func (h *UploadHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	f, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	folderID, err := formUUID(r, "folder_id")
	if err != nil {
		handleError(w, err)
		return
	}

	content := r.FormValue("content")
	if content == "" && h.extractor != nil {
		extracted, _, err := h.extractor.Extract(r.Context(), f.name, f.contentType, f.data)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "could not read file as text: "+err.Error())
			return
		}
		content = extracted
	}

	stored, ok := h.put(w, r, caller, f)
	if !ok {
		return
	}

	fileType := f.contentType
	req := &docsysSvc.CreateDocumentRequest{
		Title:    titleOr(r.FormValue("title"), f.name),
		Content:  content,
		FolderID: folderID,
		FileURL:  &stored.URL,
		FileType: &fileType,
		FileSize: stored.Size,
	}

	doc, err := h.docService.CreateDocument(r.Context(), caller, req)
	if err != nil {
		h.cleanup(r, caller, stored)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// UploadAudio stores a recording and creates its row
// POST /api/audio/upload (multipart: file, title?, duration_seconds?, transcription?, folder_id?)
func (h *UploadHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	f, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	folderID, err := formUUID(r, "folder_id")
	if err != nil {
		handleError(w, err)
		return
	}
	if !strings.HasPrefix(f.contentType, "audio/") && !strings.HasPrefix(f.contentType, "video/webm") {
		httputil.RespondError(w, http.StatusBadRequest, "file is not an audio recording")
		return
	}
	stored, ok := h.put(w, r, caller, f)
	if !ok {
		return
	}

	duration, _ := strconv.Atoi(r.FormValue("duration_seconds"))
	req := &docsysSvc.CreateAudioRequest{
		Title:           titleOr(r.FormValue("title"), f.name),
		FileURL:         stored.URL,
		DurationSeconds: duration,
		Transcription:   formOptional(r, "transcription"),
		FolderID:        folderID,
	}

	audio, err := h.audioService.CreateAudio(r.Context(), caller, req)
	if err != nil {
		h.cleanup(r, caller, stored)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, audio)
}

// cleanup removes an object whose row could not be created
func (h *UploadHandler) cleanup(r *http.Request, caller *models.Caller, stored *services.StoredFile) {
	if err := h.store.Delete(r.Context(), caller, stored.Key); err != nil {
		h.logger.Warn("orphaned upload", "key", stored.Key, "error", err)
	}
}

// titleOr falls back to the file name without extension
func titleOr(title, filename string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// formUUID reads an optional id field, rejecting values that are not UUIDs
func formUUID(r *http.Request, name string) (*string, error) {
	v := formOptional(r, name)
	if v == nil {
		return nil, nil
	}
	if _, err := uuid.Parse(*v); err != nil {
		return nil, &domain.ValidationError{Message: "invalid " + name + " format"}
	}
	return v, nil
}

func formOptional(r *http.Request, name string) *string {
	if v := strings.TrimSpace(r.FormValue(name)); v != "" {
		return &v
	}
	return nil
}
