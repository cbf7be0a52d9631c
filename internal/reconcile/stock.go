// Package reconcile implementa los dos motores de conciliación: stock
// (Publicaciones ML contra variantes de Odoo) y ventas (ventas ML contra
// ventas registradas en Odoo). Los motores son funciones puras sobre filas
// ya extraídas; no tocan red ni disco.
package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nikodp14/Panel-de-Operaciones/internal/model"
	"github.com/nikodp14/Panel-de-Operaciones/internal/parser"
)

// Palabras de lado que no son color: un "espejo izquierdo rojo" y un
// "espejo derecho rojo" comparten variante de color "rojo".
var (
	bothSidesRe   = regexp.MustCompile(`\bizquierdo\s*/\s*derecho\b`)
	leftRe        = regexp.MustCompile(`\bizquierdo\b`)
	rightRe       = regexp.MustCompile(`\bderecho\b`)
	bothPhraseRe  = regexp.MustCompile(`amboslados|ambos lados`)
	plusSepsRe    = regexp.MustCompile(`[/\-+]+`)
	secondSelJunk = regexp.MustCompile(`[\s.\-_/]`)
)

// Marcadores de segunda selección en títulos y nombres de producto, ya sin
// acentos, espacios ni puntuación.
var secondSelectionMarkers = []string{
	"2dasel",
	"2daseleccion",
	"segundaseleccion",
	"2daselec",
	"2ªseleccion",
}

// Variantes que en realidad significan "sin variante".
var noVariantMarkers = []string{"izquierdo/conductor", "original"}

// StockEngine concilia Publicaciones ML contra el stock de Odoo usando la
// configuración de referencia de la corrida.
type StockEngine struct {
	ref Reference
}

// Reference es lo que el motor necesita de configuracion.xlsx. La
// implementación real vive en internal/refdata.
type Reference interface {
	IsOmitted(code string) bool
	ConfigFor(code string) model.StockConfig
	IsValidateVariant(variant string) bool
}

// NewStockEngine crea el motor con la referencia de esta corrida.
func NewStockEngine(ref Reference) *StockEngine {
	return &StockEngine{ref: ref}
}

// Reconcile produce una observación por publicación analizable, en el orden
// del export. Las filas con variante vacía o "-" no se emiten.
func (e *StockEngine) Reconcile(listings []model.ListingRow, stock []model.StockRow) []model.StockObservation {
	observations := make([]model.StockObservation, 0, len(listings))

	for _, listing := range listings {
		if listing.VariantRaw == "" || listing.VariantRaw == "-" {
			continue
		}
		observations = append(observations, e.observe(listing, stock))
	}
	return observations
}

// observe clasifica una publicación. Exactamente una acción por fila.
func (e *StockEngine) observe(listing model.ListingRow, stock []model.StockRow) model.StockObservation {
	obs := model.StockObservation{
		Publication: listing.Publication,
		Title:       listing.Title,
		MLStock:     listing.Stock,
	}
	// La variante no se muestra cuando duplica el título.
	if listing.VariantRaw != listing.Title {
		obs.VariantDisplay = listing.VariantRaw
	}

	if e.ref.IsOmitted(listing.NormalizedPublication) && listing.Stock == 0 {
		obs.Action = model.StockOmitido
		obs.Detail = "Marcado como OMITIDO desde configuracion.xlsx (stock ML = 0)"
		return obs
	}

	variant, fullVariant := e.deriveVariant(listing)
	matches := e.match(listing.NormalizedPublication, variant, fullVariant, stock)

	hasMatch := len(matches) > 0
	odooStock := 0
	if hasMatch {
		odooStock = matches[0].Stock
		for _, m := range matches[1:] {
			if m.Stock < odooStock {
				odooStock = m.Stock
			}
		}
	}
	obs.OdooStock = odooStock

	cfg := e.ref.ConfigFor(listing.NormalizedPublication)
	maxByConfig := cfg.MaxStock / cfg.UnitsPerPack
	maxByOdoo := odooStock / cfg.UnitsPerPack
	suggested := maxByConfig
	if maxByOdoo < suggested {
		suggested = maxByOdoo
	}
	obs.SuggestedStock = suggested

	// 2da. Sel. pisa cualquier otra clasificación.
	is2daSel := isSecondSelection(listing.Title)
	for _, m := range matches {
		if is2daSel {
			break
		}
		is2daSel = isSecondSelection(m.Name)
	}
	if is2daSel {
		obs.Action = model.StockSegundaSeleccion
		obs.Detail = "Clasificado como segunda selección"
		return obs
	}

	switch {
	case !hasMatch:
		obs.Action = model.StockNoEncontrado
		obs.Detail = "La publicación no existe en STOCK ODOO."
	case listing.Stock < suggested:
		obs.Action = model.StockSubir
		obs.Detail = fmt.Sprintf("Subir %d unidad(es).", suggested-listing.Stock)
	case listing.Stock > suggested:
		obs.Action = model.StockBajar
		obs.Detail = fmt.Sprintf("Bajar %d unidad(es).", listing.Stock-suggested)
	default:
		obs.Action = model.StockOK
		obs.Detail = "No requiere cambios."
	}
	return obs
}

// deriveVariant arma las dos frases de búsqueda: la variante efectiva (sin
// palabras de lado) y la frase completa para el reintento. Vacía significa
// "no filtrar por variante".
func (e *StockEngine) deriveVariant(listing model.ListingRow) (variant, fullVariant string) {
	normalizedRaw := parser.NormalizeVariant(listing.VariantRaw)
	fullVariant = parser.CollapseSeparators(normalizedRaw)

	variant = stripDirectionalWords(normalizedRaw)
	variant = parser.CollapseSeparators(variant)

	titleHasOriginal := strings.Contains(parser.NormalizeVariant(listing.Title), "original")

	// Título == variante, marcador de "sin variante" u "original" en el
	// título: no hay variante que validar contra Odoo.
	if listing.Title != "" && listing.VariantRaw == listing.Title {
		return "", ""
	}
	for _, marker := range noVariantMarkers {
		if normalizedRaw == marker || variant == marker {
			return "", ""
		}
	}
	if titleHasOriginal {
		return "", ""
	}
	return variant, fullVariant
}

// match es la cadena de reglas en orden de prioridad:
//  1. candidatos por código: filas cuyo barcode contiene la publicación;
//  2. filtro por variante efectiva (exacto en columna, substring en nombre);
//  3. reintento con la frase completa bajo la misma regla;
//  4. guarda de ambigüedad: variante validable o multi-palabra con varios
//     candidatos no se adivina — match vacío, termina en NO ENCONTRADO;
//  5. fallback por código: SKU único o variante no validable, el código basta.
func (e *StockEngine) match(publication, variant, fullVariant string, stock []model.StockRow) []model.StockRow {
	if publication == "" {
		return nil
	}

	var candidates []model.StockRow
	for _, row := range stock {
		for _, code := range parser.ExtractBaseCodes(row.Barcode) {
			if strings.Contains(code, publication) {
				candidates = append(candidates, row)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	matches := candidates
	if variant != "" {
		matches = filterByVariant(candidates, variant)
	}
	if len(matches) > 0 {
		return matches
	}

	if fullVariant != "" {
		if strict := filterByVariant(candidates, fullVariant); len(strict) > 0 {
			return strict
		}
	}

	// La guarda mira la variante efectiva (sin palabras de lado): un color
	// simple detrás de "izquierdo/derecho" sigue admitiendo el fallback.
	validable := e.ref.IsValidateVariant(variant)
	multiword := strings.Contains(variant, " ")
	if (validable || multiword) && len(candidates) > 1 {
		return nil
	}
	return candidates
}

// filterByVariant compara la frase contra cada fila de Odoo: exacto cuando
// la fila trae columna de variante, substring sobre el nombre cuando no.
func filterByVariant(candidates []model.StockRow, variant string) []model.StockRow {
	var matches []model.StockRow
	for _, row := range candidates {
		if matchesFibraCarbono(row, variant) {
			matches = append(matches, row)
			continue
		}
		if row.Variant != "" {
			if row.Variant == variant {
				matches = append(matches, row)
			}
			continue
		}
		if strings.Contains(row.Name, variant) {
			matches = append(matches, row)
		}
	}
	return matches
}

// matchesFibraCarbono resuelve el alias "fibra de carbono" ≡ "fibra carbono",
// que Odoo escribe de ambas formas.
func matchesFibraCarbono(row model.StockRow, variant string) bool {
	const long, short = "fibra de carbono", "fibra carbono"

	if variant != long && variant != short {
		return false
	}
	if row.Variant != "" {
		return row.Variant == long || row.Variant == short
	}
	return strings.Contains(row.Name, long) || strings.Contains(row.Name, short)
}

// stripDirectionalWords quita izquierdo/derecho/ambos lados y pasa los
// separadores restantes a espacios.
func stripDirectionalWords(variant string) string {
	v := bothSidesRe.ReplaceAllString(variant, "")
	v = leftRe.ReplaceAllString(v, "")
	v = rightRe.ReplaceAllString(v, "")
	v = bothPhraseRe.ReplaceAllString(v, "")
	return plusSepsRe.ReplaceAllString(v, " ")
}

// isSecondSelection detecta marcadores de segunda selección tras normalizar
// acentos, espacios y puntuación.
func isSecondSelection(text string) bool {
	t := parser.NormalizeVariant(text)
	t = secondSelJunk.ReplaceAllString(t, "")
	return parser.ContainsAny(t, secondSelectionMarkers)
}
