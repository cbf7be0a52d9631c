package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nikodp14/Panel-de-Operaciones/internal/model"
)

// SetDispatchCode inserta o pisa el código de despacho de una venta.
// Última escritura gana; no hay locking entre sesiones.
func (s *Store) SetDispatchCode(orderID, code string, productChanged bool) (*model.DispatchCode, error) {
	rec := &model.DispatchCode{
		OrderID:        orderID,
		Code:           code,
		ProductChanged: productChanged,
		UpdatedAt:      time.Now().Format(time.RFC3339),
	}

	_, err := s.db.Exec(`
		INSERT INTO dispatch_codes (order_id, code, product_changed, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(order_id) DO UPDATE SET
			code = excluded.code,
			product_changed = excluded.product_changed,
			updated_at = excluded.updated_at
	`, rec.OrderID, rec.Code, boolToInt(rec.ProductChanged), rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("no se pudo guardar el código de despacho: %w", err)
	}
	return rec, nil
}

// GetDispatchCode busca el código de una venta. ok=false si no existe.
func (s *Store) GetDispatchCode(orderID string) (*model.DispatchCode, bool, error) {
	rec := &model.DispatchCode{}
	var changed int
	err := s.db.QueryRow(`
		SELECT order_id, code, product_changed, updated_at
		FROM dispatch_codes WHERE order_id = ?
	`, orderID).Scan(&rec.OrderID, &rec.Code, &changed, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("no se pudo consultar el código de despacho: %w", err)
	}
	rec.ProductChanged = changed != 0
	return rec, true, nil
}

// AllDispatchCodes carga todos los códigos para indexarlos en una corrida.
func (s *Store) AllDispatchCodes() ([]model.DispatchCode, error) {
	rows, err := s.db.Query(`SELECT order_id, code, product_changed, updated_at FROM dispatch_codes`)
	if err != nil {
		return nil, fmt.Errorf("no se pudieron leer los códigos de despacho: %w", err)
	}
	defer rows.Close()

	var codes []model.DispatchCode
	for rows.Next() {
		var dc model.DispatchCode
		var changed int
		if err := rows.Scan(&dc.OrderID, &dc.Code, &changed, &dc.UpdatedAt); err != nil {
			return nil, err
		}
		dc.ProductChanged = changed != 0
		codes = append(codes, dc)
	}
	return codes, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
