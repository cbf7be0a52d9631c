package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^0-9A-Z]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	separatorsRe = regexp.MustCompile(`[-_/]+`)
)

// stripDiacritics descompone y elimina los acentos ("á" y "a" comparan igual).
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeCode canonicaliza números de publicación y números de venta para
// cruzar fuentes: mayúsculas, sin NBSP ni espacios, sin prefijo MLC, solo
// alfanumérico. Es idempotente.
func NormalizeCode(value string) string {
	s := strings.ToUpper(value)
	s = strings.ReplaceAll(s, "\u00a0", "") // NBSP que Excel mete como espacio invisible
	s = whitespaceRe.ReplaceAllString(s, "")
	s = strings.TrimPrefix(s, "MLC")
	return nonAlnumRe.ReplaceAllString(s, "")
}

// NormalizeBarcode solo sube a mayúsculas y quita espacios; el resto del
// contenido lo interpreta ExtractBaseCodes.
func NormalizeBarcode(value string) string {
	return whitespaceRe.ReplaceAllString(strings.ToUpper(value), "")
}

// NormalizeVariant canonicaliza frases de variante/color: minúsculas y sin
// acentos. No toca los separadores; eso es CollapseSeparators.
func NormalizeVariant(value string) string {
	return stripDiacritics(strings.ToLower(strings.TrimSpace(value)))
}

// CollapseSeparators pasa separadores internos a espacios simples
// (ej: "rojo-negro/rojo" -> "rojo negro rojo").
func CollapseSeparators(value string) string {
	s := separatorsRe.ReplaceAllString(value, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractBaseCodes obtiene los códigos ML candidatos de un código de barras
// de Odoo. Descarta el sufijo "-N" y separa por "/" los códigos multiplexados.
func ExtractBaseCodes(barcode string) []string {
	s := strings.ToUpper(barcode)
	s = strings.SplitN(s, "-", 2)[0]

	parts := strings.Split(s, "/")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := nonAlnumRe.ReplaceAllString(p, ""); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// NormalizeHeader canonicaliza encabezados y nombres de hoja para la
// detección difusa de columnas.
func NormalizeHeader(value string) string {
	return stripDiacritics(strings.ToLower(strings.TrimSpace(value)))
}

// ContainsAny indica si el texto contiene alguna de las palabras clave.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
