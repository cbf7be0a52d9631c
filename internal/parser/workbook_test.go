package parser

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook arma una planilla en memoria para los tests.
func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatal(err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatal(err)
			}
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOpenWorkbookInvalid(t *testing.T) {
	if _, err := OpenWorkbook([]byte("esto no es un xlsx")); err == nil {
		t.Fatal("esperaba error con bytes inválidos")
	}
}

func TestFindSheet(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Publicaciones ML": {{"a"}},
	})
	wb, err := OpenWorkbook(data)
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	name, ok := wb.FindSheet("publicaciones")
	if !ok || name != "Publicaciones ML" {
		t.Fatalf("FindSheet = %q, %v", name, ok)
	}
	if _, ok := wb.FindSheet("ventas"); ok {
		t.Fatal("no esperaba encontrar hoja de ventas")
	}
}

func TestReadTableHeaderRow(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Hoja1": {
			{"Publicaciones"},
			{"Resumen del export"},
			{"Número de publicación", "Título"},
			{"MLC111", "Espejo retrovisor"},
			{"MLC222", "Tapa espejo"},
		},
	})
	wb, err := OpenWorkbook(data)
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	table, err := wb.ReadTable(SheetOptions{FallbackIndex: 0, HeaderRow: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Headers) != 2 || table.Headers[0] != "Número de publicación" {
		t.Fatalf("headers = %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
}

func TestReadTableHeaderRowOutOfRange(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Hoja1": {{"solo una fila"}},
	})
	wb, err := OpenWorkbook(data)
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	if _, err := wb.ReadTable(SheetOptions{HeaderRow: 5}); err == nil {
		t.Fatal("esperaba error con HeaderRow fuera de rango")
	}
}

func TestCell(t *testing.T) {
	row := []string{"a", "b"}
	if Cell(row, 0) != "a" || Cell(row, 1) != "b" {
		t.Fatal("índices válidos")
	}
	// GetRows recorta colas vacías: fuera de rango es celda vacía, no panic.
	if Cell(row, 7) != "" || Cell(row, -1) != "" {
		t.Fatal("fuera de rango debe ser vacío")
	}
}
