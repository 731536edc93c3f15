package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
	"github.com/dropDatabas3/corpsite/internal/store"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func writeMessageErr(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "mensaje inexistente", httpx.CodeNotFound)
		return
	}
	logger.From(r.Context()).Error("operación de mensajes falló", logger.Err(err))
	httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno", httpx.CodeInternal)
}

// NewContactCreateHandler: POST /api/contact. Público: es el form del sitio.
func NewContactCreateHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		req.Subject = strings.TrimSpace(req.Subject)
		if req.Name == "" || req.Subject == "" || strings.TrimSpace(req.Message) == "" {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "faltan name, subject o message", httpx.CodeValidation)
			return
		}
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "email inválido", httpx.CodeValidation)
			return
		}

		m, err := d.Store.CreateMessage(r.Context(), &store.ContactMessage{
			Name:    req.Name,
			Email:   req.Email,
			Subject: req.Subject,
			Message: req.Message,
		})
		if err != nil {
			writeMessageErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, m)
	}
}

// NewMessagesListHandler: GET /api/contact-messages
func NewMessagesListHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := d.Store.ListMessages(r.Context())
		if err != nil {
			writeMessageErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, msgs)
	}
}

// NewMessagesReadHandler marca leído/no leído según el sufijo de la ruta.
func NewMessagesReadHandler(d Deps, read bool) http.HandlerFunc {
	action := "message_marked_unread"
	if read {
		action = "message_marked_read"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		m, err := d.Store.SetMessageRead(r.Context(), id, read)
		if err != nil {
			writeMessageErr(w, r, err)
			return
		}
		d.Audit.Record(r.Context(), actorName(r), action, "message:"+id, m.Subject)
		httpx.WriteJSON(w, http.StatusOK, m)
	}
}

// NewMessagesDeleteHandler: DELETE /api/contact-messages/{id}
func NewMessagesDeleteHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Store.DeleteMessage(r.Context(), id); err != nil {
			writeMessageErr(w, r, err)
			return
		}
		d.Audit.Record(r.Context(), actorName(r), "message_deleted", "message:"+id, "")
		w.WriteHeader(http.StatusNoContent)
	}
}
