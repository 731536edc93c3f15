package authz

import "net/http"

// Role es el rol plano del usuario. La jerarquía es admin > editor > viewer;
// cualquier string desconocido queda por debajo de viewer.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Valid reporta si el rol es uno de los tres conocidos.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}

// level materializa la precedencia. Desconocido = 0, debajo de todo.
func (r Role) level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// AtLeast reporta si r tiene precedencia mayor o igual que min.
func (r Role) AtLeast(min Role) bool {
	return r.level() >= min.level()
}

// Scope clasifica el recurso sobre el que se decide.
type Scope int

const (
	// ScopePublic: contenido del sitio, legible sin sesión.
	ScopePublic Scope = iota
	// ScopeProtected: requiere sesión para cualquier método.
	ScopeProtected
	// ScopeAdmin: gestión (usuarios, actividad); sólo admin.
	ScopeAdmin
)

// Identity es lo que el evaluador sabe del que pide. Vacío = anónimo.
type Identity struct {
	Authenticated bool
	Role          Role
}

// Anonymous es la identidad sin sesión.
var Anonymous = Identity{}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// writeMethod: los verbos de escritura que le tocan al editor. Lista
// explícita; TRACE, CONNECT o un verbo inventado no califican.
func writeMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// Allow es el evaluador de acceso. Es una función pura: mismo input, misma
// respuesta, sin tocar red ni DB.
//
//	admin   -> todo
//	editor  -> lectura y escritura (POST/PUT/PATCH), nunca DELETE
//	viewer  -> sólo lectura
//	anónimo -> sólo lectura sobre recursos públicos
//
// Un rol desconocido falla cerrado: se lo trata como lectura sola, nunca
// se escala.
func Allow(id Identity, method string, scope Scope) bool {
	if scope == ScopeAdmin {
		return id.Authenticated && id.Role == RoleAdmin
	}
	if !id.Authenticated {
		return scope == ScopePublic && safeMethod(method)
	}
	switch id.Role {
	case RoleAdmin:
		return true
	case RoleEditor:
		return safeMethod(method) || writeMethod(method)
	default:
		// viewer y desconocidos
		return safeMethod(method)
	}
}
