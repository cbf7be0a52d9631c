package parser

import (
	"errors"
	"testing"
)

func listingsTable() *Table {
	return &Table{
		Headers: []string{"Número de publicación", "SKU", "Título", "Variantes", "En mi depósito"},
		Rows: [][]string{
			{"MLC111", "", "Espejo retrovisor", "Rojo", "3"},
			{"MLC111", "", "", "Negro", "0"},
			{"MLC222", "", "Tapa espejo", "-", "-2"},
		},
	}
}

func TestExtractListings(t *testing.T) {
	listings, err := ExtractListings(listingsTable())
	if err != nil {
		t.Fatal(err)
	}
	if len(listings) != 3 {
		t.Fatalf("listings = %d, want 3", len(listings))
	}

	first := listings[0]
	if first.NormalizedPublication != "111" {
		t.Fatalf("normalized = %q", first.NormalizedPublication)
	}
	if first.Stock != 3 || first.VariantRaw != "Rojo" {
		t.Fatalf("fila inesperada: %+v", first)
	}

	// La fila de variante sin título hereda el de su publicación.
	if listings[1].Title != "Espejo retrovisor" {
		t.Fatalf("título heredado = %q", listings[1].Title)
	}

	// Stock negativo o no numérico clampa a 0.
	if listings[2].Stock != 0 {
		t.Fatalf("stock = %d, want 0", listings[2].Stock)
	}
}

func TestExtractListingsMissingColumn(t *testing.T) {
	table := &Table{
		Headers: []string{"SKU", "Título"},
		Rows:    nil,
	}
	_, err := ExtractListings(table)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, esperaba MissingColumnError", err)
	}
	if missing.Dataset != "PUBLICACIONES ML" {
		t.Fatalf("dataset = %q", missing.Dataset)
	}
}

func TestExtractStock(t *testing.T) {
	table := &Table{
		Headers: []string{"Nombre", "Código de barras", "Valores de las variantes/Valor", "Cantidad a mano"},
		Rows: [][]string{
			{"Espejo Retrovisor Rojo", "111-1", "Rojo", "5"},
			{"Tapa Espejo", "222/333", "", "-1"},
		},
	}
	stock, err := ExtractStock(table)
	if err != nil {
		t.Fatal(err)
	}
	if len(stock) != 2 {
		t.Fatalf("stock = %d", len(stock))
	}
	if stock[0].Variant != "rojo" || stock[0].Name != "espejo retrovisor rojo" {
		t.Fatalf("normalización: %+v", stock[0])
	}
	if stock[0].Barcode != "111-1" {
		t.Fatalf("barcode = %q", stock[0].Barcode)
	}
	if stock[1].Stock != 0 {
		t.Fatalf("stock negativo debe clampar a 0, got %d", stock[1].Stock)
	}
}

func TestExtractStockMissingColumn(t *testing.T) {
	table := &Table{Headers: []string{"Nombre"}}
	_, err := ExtractStock(table)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, esperaba MissingColumnError", err)
	}
}

func TestExtractSales(t *testing.T) {
	rows := make([][]string, SalesSkipRows)
	for i := range rows {
		rows[i] = []string{"encabezado"}
	}
	venta := make([]string, 19)
	venta[0] = " 2000123 "
	venta[1] = "17 de febrero de 2026 10:00 hs."
	venta[2] = "Entregado"
	venta[9] = "3.570"
	venta[10] = "0"
	venta[12] = "119.000"
	venta[16] = "MLC111"
	venta[17] = "Espejo retrovisor"
	venta[18] = "Rojo"
	rows = append(rows, venta, []string{"2000456", "1 de marzo de 2026"})

	sales := ExtractSales(rows)
	if len(sales) != 2 {
		t.Fatalf("sales = %d, want 2", len(sales))
	}
	s := sales[0]
	if s.OrderID != "2000123" || s.TotalRaw != "119.000" || s.PublicationCode != "MLC111" {
		t.Fatalf("fila inesperada: %+v", s)
	}
	// Las filas cortas no explotan: las celdas ausentes son vacías.
	if sales[1].TotalRaw != "" {
		t.Fatalf("total = %q", sales[1].TotalRaw)
	}
}

func TestExtractSalesTooShort(t *testing.T) {
	if got := ExtractSales([][]string{{"a"}, {"b"}}); got != nil {
		t.Fatalf("esperaba nil con menos filas que el encabezado, got %v", got)
	}
}

func TestExtractErpSales(t *testing.T) {
	rows := [][]string{
		{"", "", "", "", "", "", "Número de venta", "Cantidad"},
		{"", "", "", "", "", "", "2000123", "1"},
		{"", "", "", "", "", "", "", "5"}, // sin número: se descarta
		{"", "", "", "", "", "", "2000456", "2"},
	}
	erp := ExtractErpSales(rows)
	if len(erp) != 3 {
		t.Fatalf("erp = %d, want 3", len(erp))
	}
	// La fila de encabezado entra con cantidad 0; el motor la ignora al sumar.
	if erp[1].OrderID != "2000123" || erp[1].DispatchedQty != 1 {
		t.Fatalf("fila inesperada: %+v", erp[1])
	}
}
