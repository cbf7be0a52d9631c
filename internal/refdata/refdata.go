// Package refdata carga configuracion.xlsx: el libro de referencia que el
// operador mantiene a mano con publicaciones omitidas, topes de stock ML y
// variantes que exigen validación estricta.
//
// Todo acá degrada suave: si falta el libro o una hoja, el lookup queda
// vacío y se registra un warning. Nunca es fatal — la conciliación corre
// igual con los defaults.
package refdata

import (
	"github.com/sirupsen/logrus"

	"github.com/nikodp14/Panel-de-Operaciones/internal/model"
	"github.com/nikodp14/Panel-de-Operaciones/internal/parser"
)

// Reference son los tres lookups de configuracion.xlsx, cargados una vez por
// corrida y pasados por referencia a los motores. Sin cachés globales.
type Reference struct {
	Omitted          map[string]struct{}
	StockConfig      map[string]model.StockConfig
	ValidateVariants map[string]struct{}
}

// Empty es la referencia sin configuración: ningún omitido, topes default.
func Empty() *Reference {
	return &Reference{
		Omitted:          map[string]struct{}{},
		StockConfig:      map[string]model.StockConfig{},
		ValidateVariants: map[string]struct{}{},
	}
}

// IsOmitted indica si la publicación (ya normalizada) está marcada OMITIDOS.
func (r *Reference) IsOmitted(code string) bool {
	_, ok := r.Omitted[code]
	return ok
}

// ConfigFor devuelve el tope configurado para la publicación, o el default
// (máximo 2, pack de 1) si no está en la hoja STOCK ML.
func (r *Reference) ConfigFor(code string) model.StockConfig {
	if cfg, ok := r.StockConfig[code]; ok {
		return cfg
	}
	return model.DefaultStockConfig()
}

// IsValidateVariant indica si la frase de variante exige match estricto.
func (r *Reference) IsValidateVariant(variant string) bool {
	_, ok := r.ValidateVariants[variant]
	return ok
}

// LoadBytes abre el libro de configuración y carga los tres lookups.
// data vacío o ilegible degrada a Empty con warning.
func LoadBytes(data []byte, log *logrus.Logger) *Reference {
	if len(data) == 0 {
		log.Warn("configuracion.xlsx no disponible, se continúa sin configuración")
		return Empty()
	}

	wb, err := parser.OpenWorkbook(data)
	if err != nil {
		log.WithError(err).Warn("no se pudo abrir configuracion.xlsx, se continúa sin configuración")
		return Empty()
	}
	defer wb.Close()

	return Load(wb, log)
}

// Load carga los tres lookups desde un libro ya abierto.
func Load(wb *parser.Workbook, log *logrus.Logger) *Reference {
	return &Reference{
		Omitted:          loadOmitted(wb, log),
		StockConfig:      loadStockConfig(wb, log),
		ValidateVariants: loadValidateVariants(wb, log),
	}
}

// loadOmitted lee la hoja "omitidos": publicaciones que con stock ML 0 no
// requieren acción.
func loadOmitted(wb *parser.Workbook, log *logrus.Logger) map[string]struct{} {
	set := map[string]struct{}{}

	name, ok := wb.FindSheet("omitidos")
	if !ok {
		// La hoja puede ser la primera del libro sin nombre especial.
		names := wb.SheetNames()
		if len(names) == 0 {
			log.Warn("configuracion.xlsx sin hoja de OMITIDOS")
			return set
		}
		name = names[0]
	}

	table, err := wb.ReadTableByName(name, 0)
	if err != nil {
		log.WithField("hoja", name).WithError(err).Warn("no se pudo leer OMITIDOS")
		return set
	}

	col := parser.DetectColumn(table.Headers, []string{"numero de publicacion", "publicacion", "codigo"})
	if col < 0 {
		col = 0
	}
	for _, row := range table.Rows {
		if code := parser.NormalizeCode(parser.Cell(row, col)); code != "" {
			set[code] = struct{}{}
		}
	}
	return set
}

// loadStockConfig lee la hoja "stock ml": tope por publicación y unidades
// por pack. Filas con tope no positivo se descartan.
func loadStockConfig(wb *parser.Workbook, log *logrus.Logger) map[string]model.StockConfig {
	cfg := map[string]model.StockConfig{}

	name, ok := wb.FindSheet("stock ml")
	if !ok {
		name, ok = wb.FindSheet("stockml")
	}
	if !ok {
		log.Warn("configuracion.xlsx sin hoja STOCK ML, se usará máximo 2 y unidades=1")
		return cfg
	}

	table, err := wb.ReadTableByName(name, 0)
	if err != nil {
		log.WithField("hoja", name).WithError(err).Warn("no se pudo leer STOCK ML")
		return cfg
	}

	pubCol := parser.DetectColumn(table.Headers, []string{"numero de publicacion"})
	maxCol := parser.DetectColumn(table.Headers, []string{"cantidad"})
	unitsCol := parser.DetectColumn(table.Headers, []string{"unidades"})
	if pubCol < 0 {
		pubCol = 0
	}
	if maxCol < 0 {
		maxCol = 1
	}
	if unitsCol < 0 {
		unitsCol = 2
	}

	for _, row := range table.Rows {
		pub := parser.NormalizeCode(parser.Cell(row, pubCol))
		maxStock := int(parser.ParseNumber(parser.Cell(row, maxCol)))
		units := int(parser.ParseNumber(parser.Cell(row, unitsCol)))

		if pub == "" || maxStock <= 0 {
			continue
		}
		if units <= 0 {
			units = 1
		}
		cfg[pub] = model.StockConfig{MaxStock: maxStock, UnitsPerPack: units}
	}
	return cfg
}

// loadValidateVariants lee la hoja "variantes validar" (o "variantes"):
// frases de variante que no admiten fallback por código ante ambigüedad.
func loadValidateVariants(wb *parser.Workbook, log *logrus.Logger) map[string]struct{} {
	set := map[string]struct{}{}

	name, ok := wb.FindSheet("variantes validar")
	if !ok {
		name, ok = wb.FindSheet("variantes")
	}
	if !ok {
		log.Warn("configuracion.xlsx sin hoja VARIANTES VALIDAR")
		return set
	}

	table, err := wb.ReadTableByName(name, 0)
	if err != nil {
		log.WithField("hoja", name).WithError(err).Warn("no se pudo leer VARIANTES VALIDAR")
		return set
	}

	for _, row := range table.Rows {
		v := parser.CollapseSeparators(parser.NormalizeVariant(parser.Cell(row, 0)))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
