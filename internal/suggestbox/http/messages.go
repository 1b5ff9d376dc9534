package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/domain"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/service"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
	"github.com/aussiebroadwan/suggestbox/pkg/httpx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

// maxUploadBytes bounds the whole multipart submission. Individual files are
// capped at 50MB each by MaxAttachments * per-file size staying under this.
const maxUploadBytes = 50 << 20

// MessagesHandler covers submissions, triage, and attachment downloads.
type MessagesHandler struct {
	MessageService *service.MessageService
}

// HandleSend handles POST /v1/messages
//
//	@Summary		Submit a message
//	@Description	Multipart submission of an issue or idea with up to five
//	@Description	attachments. Allowed file types depend on the message type:
//	@Description	ideas take zip/pdf, issues take jpeg/png/mp4/mov/avi/pdf.
//	@Tags			Messages
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			title		formData	string	true	"Subject"
//	@Param			description	formData	string	true	"Body"
//	@Param			type		formData	string	true	"issue or idea"
//	@Param			files		formData	file	false	"Attachments (max 5)"
//	@Success		201			{object}	sendMessageResponse
//	@Failure		400			{object}	httpx.ErrorBody	"Bad type, file type, or too many files"
//	@Failure		401			{object}	httpx.ErrorBody
//	@Router			/v1/messages [post].
func (h *MessagesHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	senderID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	mtype := domain.MessageType(r.FormValue("type"))

	var uploads []service.FileUpload
	var opened []io.Closer
	defer func() {
		for _, c := range opened {
			_ = c.Close()
		}
	}()

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "unreadable attachment")
				return
			}
			opened = append(opened, f)
			uploads = append(uploads, service.FileUpload{
				ContentType: fh.Header.Get("Content-Type"),
				Body:        f,
			})
		}
	}

	msg, err := h.MessageService.Send(ctx, senderID,
		r.FormValue("title"), r.FormValue("description"), mtype, uploads)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput),
			errors.Is(err, service.ErrInvalidFileType),
			errors.Is(err, service.ErrTooManyFiles):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("message submission failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "message submission failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, sendMessageResponse{Message: toMessageResponse(msg)})
}

// HandleList handles GET /v1/messages
//
//	@Summary		Triage listing
//	@Description	Filtered, paginated submissions for HR/admin, newest first.
//	@Description	Senders are never included; submissions are anonymous to triage.
//	@Tags			Messages
//	@Produce		json
//	@Param			page	query		int		false	"Page (1-based)"
//	@Param			limit	query		int		false	"Page size"
//	@Param			title	query		string	false	"Title substring"
//	@Param			type	query		string	false	"issue or idea"
//	@Param			status	query		string	false	"pending or resolved"
//	@Success		200		{object}	messageListResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Invalid filter"
//	@Failure		401		{object}	httpx.ErrorBody
//	@Failure		403		{object}	httpx.ErrorBody
//	@Router			/v1/messages [get].
func (h *MessagesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	filter := store.MessageFilter{
		Title: q.Get("title"),
		Page:  queryInt(q.Get("page"), 1),
		Limit: queryInt(q.Get("limit"), 10),
	}

	if raw := q.Get("type"); raw != "" {
		mtype, err := domain.ParseMessageType(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid type filter")
			return
		}
		filter.Type = mtype
	}

	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseMessageStatus(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		filter.Status = status
	}

	msgs, total, err := h.MessageService.ListMessages(ctx, filter)
	if err != nil {
		slogx.FromContext(ctx).Error("message listing failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "message listing failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMessageListResponse(msgs, total, filter.Page, filter.Limit))
}

// HandleMine handles GET /v1/messages/mine
//
//	@Summary		Own submissions
//	@Description	The caller's submissions, newest first, including any
//	@Description	resolution comments.
//	@Tags			Messages
//	@Produce		json
//	@Param			page	query		int	false	"Page (1-based)"
//	@Param			limit	query		int	false	"Page size"
//	@Success		200		{object}	messageListResponse
//	@Failure		401		{object}	httpx.ErrorBody
//	@Router			/v1/messages/mine [get].
func (h *MessagesHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	senderID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := r.URL.Query()
	page, limit := queryInt(q.Get("page"), 1), queryInt(q.Get("limit"), 10)

	msgs, total, err := h.MessageService.ListMine(ctx, senderID, page, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("message listing failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "message listing failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMessageListResponse(msgs, total, page, limit))
}

// HandleResolve handles PUT /v1/messages/{id}/resolve
//
//	@Summary		Resolve a message
//	@Description	Marks a submission resolved with a triage comment.
//	@Tags			Messages
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Message ID (ULID)"
//	@Param			request	body		resolveMessageRequest	true	"Resolution comment"
//	@Success		200		{object}	messageResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Missing comment"
//	@Failure		404		{object}	httpx.ErrorBody
//	@Router			/v1/messages/{id}/resolve [put].
func (h *MessagesHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resolveMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	msg, err := h.MessageService.Resolve(ctx, r.PathValue("id"), req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrMessageNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		default:
			slogx.FromContext(ctx).Error("message resolution failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "message resolution failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMessageResponse(msg))
}

// HandleDownload handles GET /v1/messages/{id}/files
//
//	@Summary		Download attachment
//	@Description	Redirects to a presigned URL when the blob backend supports it,
//	@Description	otherwise streams the first attachment through the service.
//	@Tags			Messages
//	@Produce		octet-stream
//	@Param			id	path		string	true	"Message ID (ULID)"
//	@Success		200	{file}		binary
//	@Success		302	{string}	string	"Redirect to presigned URL"
//	@Failure		400	{object}	httpx.ErrorBody	"Message has no attachments"
//	@Failure		404	{object}	httpx.ErrorBody
//	@Router			/v1/messages/{id}/files [get].
func (h *MessagesHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if url, ok, err := h.MessageService.PresignAttachment(ctx, r.PathValue("id")); err == nil && ok {
		http.Redirect(w, r, url, http.StatusFound)
		return
	} else if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAttachmentMissing):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			slogx.FromContext(ctx).Error("attachment download failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "attachment download failed")
		}
		return
	}

	rc, contentType, key, err := h.MessageService.OpenAttachment(ctx, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAttachmentMissing):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			slogx.FromContext(ctx).Error("attachment download failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "attachment download failed")
		}
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	if _, err := io.Copy(w, rc); err != nil {
		slogx.FromContext(ctx).Warn("attachment stream interrupted", "error", err)
	}
}

func toMessageListResponse(msgs []domain.Message, total, page, limit int) messageListResponse {
	resp := messageListResponse{
		Messages: make([]messageResponse, 0, len(msgs)),
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toMessageResponse(m))
	}
	return resp
}
