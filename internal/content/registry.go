package content

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Resource describe un tipo de contenido del sitio. Todos viven en la misma
// tabla con payload JSONB; lo que cambia por tipo está acá.
type Resource struct {
	// Slug es el segmento de URL: /api/{slug}.
	Slug string
	// Singleton: un solo registro; GET devuelve el objeto, no una lista.
	Singleton bool
	// AdminOnly: fuera del alcance de editores (ej: site-settings).
	AdminOnly bool
	// Required: campos que no pueden faltar ni venir vacíos al crear.
	Required []string
	// UniqueSlugField: nombre del campo del payload que debe ser único
	// dentro del recurso ("" = sin unicidad).
	UniqueSlugField string
}

// registry es la tabla completa de recursos. Agregar un tipo de contenido
// nuevo es agregar una fila.
var registry = map[string]Resource{
	"products":             {Slug: "products", Required: []string{"name"}},
	"product-items":        {Slug: "product-items", Required: []string{"description"}},
	"product-description":  {Slug: "product-description", Singleton: true, Required: []string{"title"}},
	"solutions":            {Slug: "solutions", Required: []string{"title", "slug", "description"}, UniqueSlugField: "slug"},
	"solution-description": {Slug: "solution-description", Singleton: true, Required: []string{"title"}},
	"news":                 {Slug: "news", Required: []string{"title", "slug", "excerpt", "content"}, UniqueSlugField: "slug"},
	"news-description":     {Slug: "news-description", Singleton: true, Required: []string{"title"}},
	"navigation":           {Slug: "navigation", Required: []string{"title", "path"}},
	"hero":                 {Slug: "hero", Singleton: true, Required: []string{"title"}},
	"features":             {Slug: "features", Required: []string{"title"}},
	"target-markets":       {Slug: "target-markets", Required: []string{"title"}},
	"why-choose-us":        {Slug: "why-choose-us", Required: []string{"title"}},
	"about-hero":           {Slug: "about-hero", Singleton: true, Required: []string{"title"}},
	"company-overview":     {Slug: "company-overview", Singleton: true, Required: []string{"title"}},
	"mission-vision":       {Slug: "mission-vision", Singleton: true, Required: []string{"title"}},
	"team-members":         {Slug: "team-members", Required: []string{"name", "position"}},
	"team-description":     {Slug: "team-description", Singleton: true, Required: []string{"title"}},
	"partners":             {Slug: "partners", Required: []string{"name"}},
	"partners-description": {Slug: "partners-description", Singleton: true, Required: []string{"title"}},
	"contact-info":         {Slug: "contact-info", Required: []string{"icon", "title"}},
	"contact-description":  {Slug: "contact-description", Singleton: true, Required: []string{"title"}},
	"site-settings":        {Slug: "site-settings", Singleton: true, AdminOnly: true, Required: []string{"site_name"}},
}

// Lookup busca un recurso por slug.
func Lookup(slug string) (Resource, bool) {
	r, ok := registry[strings.ToLower(slug)]
	return r, ok
}

// Slugs devuelve todos los slugs registrados, ordenados. Lo usan el router
// y los tests.
func Slugs() []string {
	out := make([]string, 0, len(registry))
	for s := range registry {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ValidatePayload chequea requeridos sobre el payload crudo. Devuelve los
// campos que faltan.
func (r Resource) ValidatePayload(payload json.RawMessage) (missing []string, err error) {
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("payload no es un objeto JSON: %w", err)
	}
	for _, field := range r.Required {
		v, ok := m[field]
		if !ok {
			missing = append(missing, field)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, field)
		}
	}
	return missing, nil
}

// SlugValue extrae el valor del campo único del payload ("" si no aplica).
func (r Resource) SlugValue(payload json.RawMessage) string {
	if r.UniqueSlugField == "" {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return ""
	}
	s, _ := m[r.UniqueSlugField].(string)
	return strings.TrimSpace(s)
}
