package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/attachkeeper/internal/common"
	"github.com/dmitrijs2005/attachkeeper/internal/logging"
	"github.com/dmitrijs2005/attachkeeper/internal/server/attachments"
	"github.com/dmitrijs2005/attachkeeper/internal/server/presign"
	"github.com/go-chi/chi/v5"
)

const uploadTypeAttachment = "Attachment"

type signedURLRequest struct {
	UploadType string `json:"uploadType"`
}

type createAttachmentRequest struct {
	Filename  string `json:"filename"`
	ObjectKey string `json:"s3_key"`
}

type Handler struct {
	presigner presign.Presigner
	svc       *attachments.Service
	logger    logging.Logger
}

func NewHandler(p presign.Presigner, svc *attachments.Service, logger logging.Logger) *Handler {
	return &Handler{presigner: p, svc: svc, logger: logger}
}

// SignedUploadURL issues a presigned POST credential. The body is returned
// unwrapped, as {"signed_url", "url_fields"}.
func (h *Handler) SignedUploadURL(w http.ResponseWriter, r *http.Request) {
	var req signedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.UploadType != uploadTypeAttachment {
		badRequest(w, "unsupported uploadType")
		return
	}

	cred, err := h.presigner.PresignPost(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "presign failed", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, cred)
}

func (h *Handler) CreateAttachment(w http.ResponseWriter, r *http.Request) {
	var req createAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	a, isNew, err := h.svc.Create(r.Context(), chi.URLParam(r, "ref"), req.Filename, req.ObjectKey)
	switch {
	case errors.Is(err, common.ErrorValidation):
		badRequest(w, err.Error())
		return
	case errors.Is(err, common.ErrorAlreadyExists):
		conflict(w, "s3_key belongs to another customer")
		return
	case err != nil:
		h.logger.Error(r.Context(), "create attachment failed", "error", err)
		internalError(w)
		return
	}

	if isNew {
		created(w, a)
		return
	}
	ok(w, a)
}

func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), chi.URLParam(r, "ref"))
	switch {
	case errors.Is(err, common.ErrorValidation):
		badRequest(w, err.Error())
		return
	case err != nil:
		h.logger.Error(r.Context(), "list attachments failed", "error", err)
		internalError(w)
		return
	}
	ok(w, list)
}
