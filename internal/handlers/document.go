package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dsmolyakov/gostdocs/internal/apperrors"
	"github.com/dsmolyakov/gostdocs/internal/handlers/render"
	"github.com/dsmolyakov/gostdocs/internal/models"
	"github.com/dsmolyakov/gostdocs/internal/service/auth"
)

// Attachments are read fully into memory, cap the body
const maxFileSize = 32 << 20 // 32 MiB

type documentService interface {
	Create(ctx context.Context, doc models.Document) (models.Document, error)
	Get(ctx context.Context, id int64) (models.Document, error)
	List(ctx context.Context) ([]models.Document, error)
	Update(ctx context.Context, doc models.Document) (models.Document, error)
	Delete(ctx context.Context, id int64) error

	// Has to return apperrors.ErrTransitionNotAllowed or
	// apperrors.StatusConflictError on lifecycle violations
	Transition(ctx context.Context, id int64, target models.DocumentStatus) (models.Document, error)

	SaveFile(ctx context.Context, file models.DocumentFile) error
	GetFile(ctx context.Context, documentID int64) (models.DocumentFile, error)
}

type DocumentHandler struct {
	docService documentService
}

func NewDocument(docService documentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

func (h *DocumentHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.list)
	mux.HandleFunc("POST /{$}", h.create)
	mux.HandleFunc("GET /{id}", h.get)
	mux.HandleFunc("PUT /{id}", h.update)
	mux.HandleFunc("DELETE /{id}", h.delete)
	mux.HandleFunc("PATCH /{id}/status", h.transition)
	mux.HandleFunc("PUT /{id}/file", h.uploadFile)
	mux.HandleFunc("GET /{id}/file", h.downloadFile)

	return mux
}

type DocumentRequest struct {
	FullName    string     `json:"fullName" validate:"required,min=1,max=500"`
	Designation string     `json:"designation" validate:"max=100"`
	OKPD2       string     `json:"okpd2" validate:"max=50"`
	OKS         string     `json:"oks" validate:"max=50"`
	AdoptedAt   *time.Time `json:"adoptedAt"`
	EffectiveAt *time.Time `json:"effectiveAt"`
	Content     string     `json:"content"`
	Status      string     `json:"status" validate:"required,oneof=CURRENT CANCELED REPLACED"`
}

type DocumentResponse struct {
	ID          int64      `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	ModifiedAt  time.Time  `json:"modifiedAt"`
	FullName    string     `json:"fullName"`
	Designation string     `json:"designation"`
	OKPD2       string     `json:"okpd2"`
	OKS         string     `json:"oks"`
	AdoptedAt   *time.Time `json:"adoptedAt,omitempty"`
	EffectiveAt *time.Time `json:"effectiveAt,omitempty"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
}

func documentResponse(doc models.Document) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		CreatedAt:   doc.CreatedAt,
		ModifiedAt:  doc.ModifiedAt,
		FullName:    doc.FullName,
		Designation: doc.Designation,
		OKPD2:       doc.OKPD2,
		OKS:         doc.OKS,
		AdoptedAt:   doc.AdoptedAt,
		EffectiveAt: doc.EffectiveAt,
		Content:     doc.Content,
		Status:      string(doc.Status),
	}
}

func (h *DocumentHandler) create(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, models.PermDocumentsWrite) {
		return
	}

	data, err := render.BindAndValidate[DocumentRequest](w, r)
	if err != nil {
		return
	}

	doc, err := h.docService.Create(r.Context(), models.Document{
		FullName:    data.FullName,
		Designation: data.Designation,
		OKPD2:       data.OKPD2,
		OKS:         data.OKS,
		AdoptedAt:   data.AdoptedAt,
		EffectiveAt: data.EffectiveAt,
		Content:     data.Content,
		Status:      models.DocumentStatus(data.Status),
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDocumentAlreadyExists), errors.Is(err, apperrors.ErrCurrentNameTaken):
			render.ServiceError(w, "Document with this name already exists", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, documentResponse(doc), http.StatusCreated)
}

func (h *DocumentHandler) list(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, models.PermDocumentsRead) {
		return
	}

	docs, err := h.docService.List(r.Context())
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		response = append(response, documentResponse(doc))
	}

	render.JSON(w, response)
}

func (h *DocumentHandler) get(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, models.PermDocumentsRead) {
		return
	}

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDocumentNotFound):
			render.ServiceError(w, "Document not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, documentResponse(doc))
}

func (h *DocumentHandler) update(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, models.PermDocumentsWrite) {
		return
	}

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	// Status field is accepted by the DTO but deliberately ignored here:
	// status only changes through the transition endpoint
	data, err := render.BindAndValidate[DocumentRequest](w, r)
	if err != nil {
		return
	}

	doc, err := h.docService.Update(r.Context(), models.Document{
		ID:          id,
		FullName:    data.FullName,
		Designation: data.Designation,
		OKPD2:       data.OKPD2,
		OKS:         data.OKS,
		AdoptedAt:   data.AdoptedAt,
		EffectiveAt: data.EffectiveAt,
		Content:     data.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDocumentNotFound):
			render.ServiceError(w, "Document not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, documentResponse(doc))
}

func (h *DocumentHandler) delete(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, models.PermDocumentsWrite) {
		return
	}

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	if err := h.docService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDocumentNotFound):
			render.ServiceError(w, "Document not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) transition(w http.ResponseWriter, r *http.Request) {
	type TransitionRequest struct {
		Status string `json:"status" validate:"required,oneof=CURRENT CANCELED REPLACED"`
	}

	if !requirePermission(w, r, models.PermDocumentsWrite) {
		return
	}

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	data, err := render.BindAndValidate[TransitionRequest](w, r)
	if err != nil {
		return
	}

	doc, err := h.docService.Transition(r.Context(), id, models.DocumentStatus(data.Status))
	if err != nil {
		var conflict *apperrors.StatusConflictError
		switch {
		case errors.Is(err, apperrors.ErrDocumentNotFound):
			render.ServiceError(w, "Document not found", http.StatusNotFound)
		case errors.As(err, &conflict):
			render.ServiceError(w, conflict.Error(), http.StatusConflict)
		case errors.Is(err, apperrors.ErrTransitionNotAllowed):
			render.ServiceError(w, err.Error(), http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, documentResponse(doc))
}

func (h *DocumentHandler) uploadFile(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, models.PermDocumentsWrite) {
		return
	}

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFileSize))
	if err != nil {
		render.ServiceError(w, "File too large or unreadable", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		render.ServiceError(w, "File body is empty", http.StatusBadRequest)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "document"
	}

	err = h.docService.SaveFile(r.Context(), models.DocumentFile{
		DocumentID:  id,
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDocumentNotFound):
			render.ServiceError(w, "Document not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) downloadFile(w http.ResponseWriter, r *http.Request) {
	if !requirePermission(w, r, models.PermDocumentsRead) {
		return
	}

	id, ok := documentID(w, r)
	if !ok {
		return
	}

	file, err := h.docService.GetFile(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrFileNotFound):
			render.ServiceError(w, "File not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	_, _ = w.Write(file.Data)
}

func documentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		render.ServiceError(w, "Invalid document id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// requirePermission checks the principal against the permission model and
// writes the error response itself
func requirePermission(w http.ResponseWriter, r *http.Request, perm models.Permission) bool {
	err := auth.RequirePermission(r.Context(), perm)
	switch {
	case err == nil:
		return true
	case errors.Is(err, apperrors.ErrPermissionDenied):
		render.ServiceError(w, "Forbidden", http.StatusForbidden)
	default:
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
	}
	return false
}
