package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/corpsite/internal/content"
	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
	"github.com/dropDatabas3/corpsite/internal/store"
)

// Los handlers de contenido son genéricos: el tipo sale del registry según
// el slug de la URL. Un recurso nuevo no necesita handler nuevo.

func resourceFrom(w http.ResponseWriter, r *http.Request) (content.Resource, bool) {
	slug := chi.URLParam(r, "resource")
	res, ok := content.Lookup(slug)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "recurso desconocido", httpx.CodeNotFound)
		return content.Resource{}, false
	}
	return res, true
}

func writeContentErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "no existe", httpx.CodeNotFound)
	case errors.Is(err, store.ErrDuplicate):
		httpx.WriteError(w, http.StatusConflict, "duplicate", "slug ya en uso", httpx.CodeDuplicate)
	default:
		logger.From(r.Context()).Error("operación de contenido falló", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno", httpx.CodeInternal)
	}
}

// readPayload valida requeridos y devuelve el payload listo para guardar.
func readPayload(w http.ResponseWriter, r *http.Request, res content.Resource) (json.RawMessage, bool) {
	var payload json.RawMessage
	if !httpx.ReadJSON(w, r, &payload) {
		return nil, false
	}
	if len(payload) == 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "body vacío", httpx.CodeValidation)
		return nil, false
	}
	missing, err := res.ValidatePayload(payload)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "el payload debe ser un objeto JSON", httpx.CodeInvalidJSON)
		return nil, false
	}
	if len(missing) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error",
			"faltan campos: "+strings.Join(missing, ", "), httpx.CodeValidation)
		return nil, false
	}
	return payload, true
}

// NewContentListHandler: GET /api/{resource}. Para singletons devuelve el
// objeto solo, como espera el frontend.
func NewContentListHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := resourceFrom(w, r)
		if !ok {
			return
		}
		if res.Singleton {
			e, err := d.Store.GetSingleton(r.Context(), res.Slug)
			if errors.Is(err, store.ErrNotFound) {
				httpx.WriteJSON(w, http.StatusOK, map[string]any{})
				return
			}
			if err != nil {
				writeContentErr(w, r, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, e)
			return
		}
		entries, err := d.Store.ListEntries(r.Context(), res.Slug)
		if err != nil {
			writeContentErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, entries)
	}
}

// NewContentGetHandler: GET /api/{resource}/{id}
func NewContentGetHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := resourceFrom(w, r)
		if !ok {
			return
		}
		e, err := d.Store.GetEntry(r.Context(), res.Slug, chi.URLParam(r, "id"))
		if err != nil {
			writeContentErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, e)
	}
}

// NewContentCreateHandler: POST /api/{resource}. En singletons hace upsert.
func NewContentCreateHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := resourceFrom(w, r)
		if !ok {
			return
		}
		payload, ok := readPayload(w, r, res)
		if !ok {
			return
		}

		actor := actorName(r)
		var userID string
		if p := httpx.PrincipalFrom(r.Context()); p != nil {
			userID = p.Subject
		}

		if res.Singleton {
			e, err := d.Store.UpsertSingleton(r.Context(), res.Slug, payload, userID)
			if err != nil {
				writeContentErr(w, r, err)
				return
			}
			d.Audit.Record(r.Context(), actor, "content_saved", res.Slug, e.ID)
			httpx.WriteJSON(w, http.StatusOK, e)
			return
		}

		e, err := d.Store.CreateEntry(r.Context(), res.Slug, res.SlugValue(payload), payload, userID)
		if err != nil {
			writeContentErr(w, r, err)
			return
		}
		d.Audit.Record(r.Context(), actor, "content_created", res.Slug, e.ID)
		httpx.WriteJSON(w, http.StatusCreated, e)
	}
}

// NewContentUpdateHandler: PUT y PATCH /api/{resource}/{id}. Ambos son
// reemplazo completo del payload, con los requeridos revalidados.
func NewContentUpdateHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := resourceFrom(w, r)
		if !ok {
			return
		}
		payload, ok := readPayload(w, r, res)
		if !ok {
			return
		}
		e, err := d.Store.UpdateEntry(r.Context(), res.Slug, chi.URLParam(r, "id"), res.SlugValue(payload), payload)
		if err != nil {
			writeContentErr(w, r, err)
			return
		}
		d.Audit.Record(r.Context(), actorName(r), "content_updated", res.Slug, e.ID)
		httpx.WriteJSON(w, http.StatusOK, e)
	}
}

// NewContentDeleteHandler: DELETE /api/{resource}/{id}. Sólo llega acá un
// admin; el evaluador le niega DELETE al resto.
func NewContentDeleteHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := resourceFrom(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		if err := d.Store.DeleteEntry(r.Context(), res.Slug, id); err != nil {
			writeContentErr(w, r, err)
			return
		}
		d.Audit.Record(r.Context(), actorName(r), "content_deleted", res.Slug, id)
		w.WriteHeader(http.StatusNoContent)
	}
}
