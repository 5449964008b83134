// Package placeholder sustituye marcadores con nombre del tipo {{campo}} en
// asuntos y cuerpos de plantillas de correo.
package placeholder

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Render reemplaza cada {{campo}} presente en values por su valor. Los
// marcadores que no figuran en el mapa se dejan intactos para que sean
// visibles al revisar la plantilla.
func Render(tpl string, values map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		key := strings.Trim(match, "{} \t")
		if value, ok := values[key]; ok {
			return value
		}

		return match
	})
}
