package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Códigos de error de la API (complementan el HTTP status):
//
//	11xx  body / formato
//	14xx  validación y límites
//	15xx  internos
//	19xx  authn/authz
//	20xx  flujo de credenciales
const (
	CodeInvalidJSON     = 1102
	CodeValidation      = 1400
	CodeRateLimited     = 1401
	CodeNotFound        = 1404
	CodeDuplicate       = 1409
	CodeInternal        = 1500
	CodeUnauthorized    = 1900
	CodeForbidden       = 1902
	CodeBadCredentials  = 2001
	CodeBadToken        = 2002
	CodeWeakPassword    = 2003
	CodeProtectedUser   = 2004
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorCode        int    `json:"error_code,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

// WriteError arma el envelope uniforme. El request_id sale del header que ya
// seteo el middleware.
func WriteError(w http.ResponseWriter, status int, code, desc string, errCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rid := w.Header().Get("X-Request-ID")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{
		Error:            code,
		ErrorDescription: desc,
		ErrorCode:        errCode,
		RequestID:        rid,
	})
}

// WriteJSON: respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodifica el body con límite de 1MB. Tolerante con campos
// desconocidos para no romper clientes viejos.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Content-Type debe ser application/json", CodeInvalidJSON)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteError(w, http.StatusBadRequest, "invalid_json", "json inválido", CodeInvalidJSON)
		return false
	}
	return true
}
