// Package catalog reglas de catálogo independientes de la persistencia:
// grupos de fabricantes y firma de filtros.
package catalog

import (
	"sort"
	"strings"
)

// AllTab pestaña "todos los fabricantes" del escaparate.
const AllTab = "Все"

// Group fabricante canónico con sus variantes de escritura en las listas de precios.
type Group struct {
	Name    string
	Aliases []string
}

// groups tabla canónica de fabricantes. La comparación es exacta sin distinguir
// mayúsculas; no se hace coincidencia por subcadena.
var groups = []Group{
	{Name: "AirRoxy", Aliases: []string{"AirRoxy", "Air Roxy"}},
	{Name: "Bticino", Aliases: []string{"Bticino"}},
	{Name: "CHINT", Aliases: []string{"CHINT"}},
	{Name: "DKC", Aliases: []string{"DKC"}},
	{Name: "IEK", Aliases: []string{"IEK"}},
	{Name: "Jung", Aliases: []string{"Jung"}},
	{Name: "Legrand", Aliases: []string{"Legrand"}},
	{Name: "OBO Bettermann", Aliases: []string{"OBO Bettermann", "OBO"}},
	{Name: "Schneider Electric", Aliases: []string{"Schneider Electric", "Schneider"}},
	{Name: "Wago", Aliases: []string{"Wago"}},
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]int {
	idx := make(map[string]int)
	for i, g := range groups {
		idx[fold(g.Name)] = i
		for _, a := range g.Aliases {
			idx[fold(a)] = i
		}
	}
	return idx
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Groups devuelve una copia de la tabla de grupos.
func Groups() []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Name: g.Name, Aliases: append([]string(nil), g.Aliases...)}
	}
	return out
}

// Tabs pestañas del escaparate: "Все" seguido de los grupos canónicos.
func Tabs() []string {
	tabs := make([]string, 0, len(groups)+1)
	tabs = append(tabs, AllTab)
	for _, g := range groups {
		tabs = append(tabs, g.Name)
	}
	return tabs
}

// Canonical nombre canónico del fabricante; si no pertenece a ningún grupo se
// devuelve el nombre recortado tal cual.
func Canonical(manufacturer string) string {
	if i, ok := aliasIndex[fold(manufacturer)]; ok {
		return groups[i].Name
	}
	return strings.TrimSpace(manufacturer)
}

// FilterValues valores en minúsculas con los que se filtra la columna manufacturer.
// Un grupo conocido se expande a todas sus variantes; "" y "Все" significan sin filtro (nil).
func FilterValues(manufacturer string) []string {
	m := fold(manufacturer)
	if m == "" || m == fold(AllTab) {
		return nil
	}
	i, ok := aliasIndex[m]
	if !ok {
		return []string{m}
	}
	seen := map[string]bool{fold(groups[i].Name): true}
	values := []string{fold(groups[i].Name)}
	for _, a := range groups[i].Aliases {
		if f := fold(a); !seen[f] {
			seen[f] = true
			values = append(values, f)
		}
	}
	sort.Strings(values)
	return values
}
