package reconcile

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nikodp14/Panel-de-Operaciones/internal/model"
	"github.com/nikodp14/Panel-de-Operaciones/internal/parser"
)

// SalesParams son las constantes de negocio de la validación de ventas.
type SalesParams struct {
	Cutoff          time.Time       // ventas anteriores no se analizan
	VATFactor       decimal.Decimal // 1.19: IVA incluido en los totales ML
	ShippingSubsidy decimal.Decimal // subsidio plano de envío que ML descuenta
}

// DefaultSalesParams replica las constantes del flujo manual.
func DefaultSalesParams() SalesParams {
	return SalesParams{
		Cutoff:          time.Date(2026, time.February, 17, 0, 0, 0, 0, time.Local),
		VATFactor:       decimal.NewFromFloat(1.19),
		ShippingSubsidy: decimal.NewFromInt(3000),
	}
}

// DispatchEntry es el código de despacho persistido para una venta.
type DispatchEntry struct {
	Code           string
	ProductChanged bool // el operador marcó que el producto enviado cambió
}

// DispatchIndex indexa códigos de despacho por número de venta normalizado.
type DispatchIndex map[string]DispatchEntry

// SalesEngine concilia ventas ML contra las ventas registradas en Odoo.
type SalesEngine struct {
	params   SalesParams
	dispatch DispatchIndex
}

// NewSalesEngine crea el motor. dispatch puede ser nil.
func NewSalesEngine(params SalesParams, dispatch DispatchIndex) *SalesEngine {
	if dispatch == nil {
		dispatch = DispatchIndex{}
	}
	return &SalesEngine{params: params, dispatch: dispatch}
}

// Reconcile clasifica cada venta ML. Las filas sin número, sin fecha
// parseable, anteriores al corte o con total inválido se saltan; las que no
// caen en ninguna regla no se emiten.
func (e *SalesEngine) Reconcile(sales []model.SaleRow, erp []model.ErpSale) []model.SaleObservation {
	// Cantidad entregada por venta, sumando duplicados.
	dispatched := make(map[string]int, len(erp))
	for _, s := range erp {
		dispatched[parser.NormalizeCode(s.OrderID)] += s.DispatchedQty
	}

	observations := make([]model.SaleObservation, 0, len(sales))

	for _, sale := range sales {
		order := parser.NormalizeCode(sale.OrderID)
		if order == "" {
			continue
		}
		date, ok := parser.ParseDate(sale.DateRaw)
		if !ok {
			continue
		}
		if date.Before(e.params.Cutoff) {
			continue
		}
		total, ok := parser.ParseMoney(sale.TotalRaw)
		if !ok || total.IsNegative() {
			continue
		}

		qty, inErp := dispatched[order]
		cancelOrReturn := isCancelOrReturn(sale.Status)

		// Última regla verdadera gana, en el orden del flujo original.
		var action model.SaleAction
		matched := false
		if !inErp && total.IsPositive() {
			action = model.SaleRegistrar
			matched = true
		}
		if inErp && total.IsPositive() && qty == 0 && !cancelOrReturn {
			action = model.SaleEntregar
			matched = true
		}
		if cancelOrReturn && qty > 0 {
			action = model.SaleDevolver
			matched = true
		}
		if !matched {
			continue
		}

		entry, hasCode := e.dispatch[order]
		if action == model.SaleRegistrar && hasCode && entry.Code != "" && !entry.ProductChanged {
			// El código ingresado debe contener el código de la publicación
			// vendida; si no, el operador despachó otro producto.
			if !strings.Contains(parser.NormalizeCode(entry.Code), parser.NormalizeCode(sale.PublicationCode)) {
				action = model.SaleDespachoIncorrecto
			}
		}

		observations = append(observations, model.SaleObservation{
			OrderID:        sale.OrderID,
			Date:           date.Format("2006-01-02"),
			Status:         sale.Status,
			DisplayedPrice: e.displayedPrice(total, sale),
			DispatchCode:   entry.Code,
			Action:         action,
		})
	}
	return observations
}

// displayedPrice calcula el precio neto a mostrar:
//   - cancelada con total 0: 0, sin cálculo;
//   - sin ingreso por envío: total / 1.19 redondeado;
//   - con envío (ingreso + costo > 0): (total − 3000·1.19) / 1.19 redondeado.
func (e *SalesEngine) displayedPrice(total decimal.Decimal, sale model.SaleRow) int64 {
	income, ok := parser.ParseMoney(sale.ShippingIncome)
	if !ok {
		income = decimal.Zero
	}
	cost, ok := parser.ParseMoney(sale.ShippingCost)
	if !ok {
		cost = decimal.Zero
	}

	if strings.Contains(strings.ToLower(sale.Status), "cancel") && total.IsZero() {
		return 0
	}
	if !income.IsPositive() {
		return total.Div(e.params.VATFactor).Round(0).IntPart()
	}
	if income.Add(cost).IsPositive() {
		base := total.Sub(e.params.ShippingSubsidy.Mul(e.params.VATFactor))
		return base.Div(e.params.VATFactor).Round(0).IntPart()
	}
	return total.Div(e.params.VATFactor).Round(0).IntPart()
}

// isCancelOrReturn detecta estados de cancelación o devolución.
func isCancelOrReturn(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "cancel") || strings.Contains(s, "devol")
}
