package parser

import (
	"fmt"
	"strings"

	"github.com/nikodp14/Panel-de-Operaciones/internal/model"
)

// MissingColumnError indica que a un export le falta una columna requerida.
// Es fatal para la corrida completa: sin la columna no hay conciliación.
type MissingColumnError struct {
	Dataset string
	Column  string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("en %s falta la columna requerida %q", e.Dataset, e.Column)
}

// Layout posicional del export de ventas de MercadoLibre. Las primeras
// SalesSkipRows filas son título y resumen, no datos.
const (
	SalesSkipRows = 6

	colSaleOrder          = 0  // A: # de venta
	colSaleDate           = 1  // B: fecha de venta
	colSaleStatus         = 2  // C: estado
	colSaleShippingIncome = 9  // J: ingreso por envío
	colSaleShippingCost   = 10 // K: costo de envío
	colSaleTotal          = 12 // M: total CLP
	colSalePublication    = 16 // Q: número de publicación
	colSaleTitle          = 17 // R: título de la publicación
	colSaleVariant        = 18 // S: variante
)

// Layout del export de ventas de Odoo.
const (
	colErpOrder = 6 // G: # de venta
	colErpQty   = 7 // H: cantidad entregada
)

// ExtractListings convierte la tabla de Publicaciones ML en filas tipadas.
// Detecta columnas por encabezado difuso; una requerida ausente es fatal.
func ExtractListings(t *Table) ([]model.ListingRow, error) {
	required := []struct {
		name       string
		candidates []string
	}{
		{"variantes", []string{"variantes", "variante"}},
		{"titulo", []string{"titulo"}},
		{"numero de publicacion", []string{"numero de publicacion"}},
		{"en mi deposito", []string{"en mi deposito"}},
	}

	idx := make([]int, len(required))
	for i, col := range required {
		idx[i] = DetectColumn(t.Headers, col.candidates)
		if idx[i] < 0 {
			return nil, &MissingColumnError{Dataset: "PUBLICACIONES ML", Column: col.name}
		}
	}
	variantCol, titleCol, pubCol, stockCol := idx[0], idx[1], idx[2], idx[3]

	// Algunas filas de variantes vienen sin título: se hereda el de la
	// primera fila de la misma publicación.
	titleByPublication := make(map[string]string)
	for _, row := range t.Rows {
		pub := NormalizeCode(Cell(row, pubCol))
		title := strings.TrimSpace(Cell(row, titleCol))
		if pub != "" && title != "" {
			if _, seen := titleByPublication[pub]; !seen {
				titleByPublication[pub] = title
			}
		}
	}

	listings := make([]model.ListingRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		raw := Cell(row, pubCol)
		normalized := NormalizeCode(raw)
		title := strings.TrimSpace(Cell(row, titleCol))
		if title == "" {
			title = titleByPublication[normalized]
		}

		stock := int(ParseNumber(Cell(row, stockCol)))
		if stock < 0 {
			stock = 0
		}

		listings = append(listings, model.ListingRow{
			Publication:           strings.TrimSpace(raw),
			NormalizedPublication: normalized,
			Title:                 title,
			VariantRaw:            strings.TrimSpace(Cell(row, variantCol)),
			Stock:                 stock,
		})
	}
	return listings, nil
}

// ExtractStock convierte la tabla de variantes de Odoo en filas tipadas.
func ExtractStock(t *Table) ([]model.StockRow, error) {
	variantCol := DetectColumn(t.Headers, []string{"valores de las variantes/valor", "valores de las variantes", "valor"})
	barcodeCol := DetectColumn(t.Headers, []string{"codigo de barras", "barcode"})
	stockCol := DetectColumn(t.Headers, []string{"cantidad a mano"})
	nameCol := DetectColumn(t.Headers, []string{"nombre", "name"})

	switch {
	case variantCol < 0:
		return nil, &MissingColumnError{Dataset: "STOCK ODOO", Column: "valores de las variantes"}
	case barcodeCol < 0:
		return nil, &MissingColumnError{Dataset: "STOCK ODOO", Column: "codigo de barras"}
	case stockCol < 0:
		return nil, &MissingColumnError{Dataset: "STOCK ODOO", Column: "cantidad a mano"}
	case nameCol < 0:
		return nil, &MissingColumnError{Dataset: "STOCK ODOO", Column: "nombre"}
	}

	stock := make([]model.StockRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		qty := int(ParseNumber(Cell(row, stockCol)))
		if qty < 0 {
			qty = 0
		}
		stock = append(stock, model.StockRow{
			Barcode: NormalizeBarcode(Cell(row, barcodeCol)),
			Variant: NormalizeVariant(Cell(row, variantCol)),
			Name:    NormalizeVariant(Cell(row, nameCol)),
			Stock:   qty,
		})
	}
	return stock, nil
}

// ExtractSales lee el export de ventas ML por posición, saltando las filas
// de encabezado. Acá no se filtra nada: las reglas de descarte viven en el
// motor de conciliación.
func ExtractSales(rows [][]string) []model.SaleRow {
	if len(rows) <= SalesSkipRows {
		return nil
	}

	sales := make([]model.SaleRow, 0, len(rows)-SalesSkipRows)
	for _, row := range rows[SalesSkipRows:] {
		sales = append(sales, model.SaleRow{
			OrderID:         strings.TrimSpace(Cell(row, colSaleOrder)),
			DateRaw:         strings.TrimSpace(Cell(row, colSaleDate)),
			Status:          strings.TrimSpace(Cell(row, colSaleStatus)),
			TotalRaw:        Cell(row, colSaleTotal),
			ShippingIncome:  Cell(row, colSaleShippingIncome),
			ShippingCost:    Cell(row, colSaleShippingCost),
			PublicationCode: strings.TrimSpace(Cell(row, colSalePublication)),
			ListingTitle:    strings.TrimSpace(Cell(row, colSaleTitle)),
			ListingVariant:  strings.TrimSpace(Cell(row, colSaleVariant)),
		})
	}
	return sales
}

// ExtractErpSales lee el export de ventas de Odoo por posición.
func ExtractErpSales(rows [][]string) []model.ErpSale {
	sales := make([]model.ErpSale, 0, len(rows))
	for _, row := range rows {
		order := strings.TrimSpace(Cell(row, colErpOrder))
		if order == "" {
			continue
		}
		sales = append(sales, model.ErpSale{
			OrderID:       order,
			DispatchedQty: int(ParseNumber(Cell(row, colErpQty))),
		})
	}
	return sales
}
