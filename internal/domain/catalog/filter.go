package catalog

import (
	"fmt"
	"strings"
)

// Filter parámetros de un listado del catálogo.
type Filter struct {
	Manufacturer string
	Search       string
	Limit        int
	Offset       int
}

// IsSearch indica si el filtro es una búsqueda de texto (tiene prioridad sobre el fabricante).
func (f Filter) IsSearch() bool {
	return strings.TrimSpace(f.Search) != ""
}

// Signature clave de caché "fabricante|all:search:limit:offset". El fabricante se
// reduce a su nombre canónico para que las variantes compartan entrada.
func (f Filter) Signature() string {
	m := "all"
	if v := FilterValues(f.Manufacturer); v != nil {
		m = strings.ToLower(Canonical(f.Manufacturer))
	}
	return fmt.Sprintf("%s:%s:%d:%d", m, strings.TrimSpace(f.Search), f.Limit, f.Offset)
}
