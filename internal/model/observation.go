package model

import "encoding/json"

// StockAction clasifica una publicación tras conciliar contra Odoo.
// Exactamente una acción por fila.
type StockAction int

const (
	StockOK StockAction = iota
	StockSubir
	StockBajar
	StockNoEncontrado
	StockSegundaSeleccion
	StockOmitido
)

var stockActionLabels = map[StockAction]string{
	StockOK:               "OK",
	StockSubir:            "SUBIR",
	StockBajar:            "BAJAR",
	StockNoEncontrado:     "NO ENCONTRADO",
	StockSegundaSeleccion: "2da. Sel.",
	StockOmitido:          "OMITIDOS",
}

func (a StockAction) String() string {
	if s, ok := stockActionLabels[a]; ok {
		return s
	}
	return "OK"
}

// MarshalJSON serializa la etiqueta que muestra el panel, no el entero.
func (a StockAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// SaleAction clasifica una venta ML contra las ventas registradas en Odoo.
type SaleAction int

const (
	SaleRegistrar SaleAction = iota
	SaleEntregar
	SaleDevolver
	SaleDespachoIncorrecto
)

var saleActionLabels = map[SaleAction]string{
	SaleRegistrar:          "REGISTRAR VENTA",
	SaleEntregar:           "ENTREGAR",
	SaleDevolver:           "DEVOLVER",
	SaleDespachoIncorrecto: "DESPACHO INCORRECTO",
}

func (a SaleAction) String() string {
	if s, ok := saleActionLabels[a]; ok {
		return s
	}
	return "REGISTRAR VENTA"
}

func (a SaleAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// StockObservation es una fila del resultado de validación de stock.
type StockObservation struct {
	Publication    string      `json:"publication"`
	Title          string      `json:"title"`
	VariantDisplay string      `json:"variantDisplay"` // vacío si duplica el título
	MLStock        int         `json:"mlStock"`
	OdooStock      int         `json:"odooStock"` // mínimo entre las variantes que matchean
	SuggestedStock int         `json:"suggestedStock"`
	Action         StockAction `json:"action"`
	Detail         string      `json:"detail"`
}

// SaleObservation es una fila del resultado de validación de ventas.
type SaleObservation struct {
	OrderID        string     `json:"orderId"`
	Date           string     `json:"date"`
	Status         string     `json:"status"`
	DisplayedPrice int64      `json:"displayedPrice"` // CLP neto de comisiones/IVA
	DispatchCode   string     `json:"dispatchCode"`
	Action         SaleAction `json:"action"`
}

// StockResult agrupa las observaciones de una corrida con sus contadores.
type StockResult struct {
	Observations []StockObservation `json:"observations"`
	Counts       map[string]int     `json:"counts"`
}

// SaleResult agrupa las observaciones de ventas con sus contadores.
type SaleResult struct {
	Observations []SaleObservation `json:"observations"`
	Counts       map[string]int    `json:"counts"`
}

// CountStockActions arma los contadores de pills, incluyendo el total "TODOS".
func CountStockActions(obs []StockObservation) map[string]int {
	counts := map[string]int{
		"TODOS":         len(obs),
		"OK":            0,
		"SUBIR":         0,
		"BAJAR":         0,
		"NO ENCONTRADO": 0,
		"2da. Sel.":     0,
		"OMITIDOS":      0,
	}
	for _, o := range obs {
		counts[o.Action.String()]++
	}
	return counts
}

// CountSaleActions arma los contadores de pills de ventas.
func CountSaleActions(obs []SaleObservation) map[string]int {
	counts := map[string]int{
		"TODOS":               len(obs),
		"REGISTRAR VENTA":     0,
		"ENTREGAR":            0,
		"DEVOLVER":            0,
		"DESPACHO INCORRECTO": 0,
	}
	for _, o := range obs {
		counts[o.Action.String()]++
	}
	return counts
}
