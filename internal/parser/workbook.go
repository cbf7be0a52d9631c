package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook envuelve una planilla ya cargada en memoria. La capa de parsing
// de Excel queda concentrada acá; el resto del sistema trabaja con strings.
type Workbook struct {
	file *excelize.File
}

// SheetOptions controla qué hoja se lee y dónde están los encabezados.
type SheetOptions struct {
	NameContains  string // substring (normalizado) del nombre de hoja preferido
	FallbackIndex int    // índice de hoja si ninguna coincide
	HeaderRow     int    // fila 0-based donde viven los encabezados
}

// Table es una hoja leída: encabezados más filas de datos como strings.
type Table struct {
	Headers []string
	Rows    [][]string
}

// OpenWorkbook abre una planilla desde los bytes subidos.
func OpenWorkbook(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir la planilla: %w", err)
	}
	return &Workbook{file: f}, nil
}

// Close libera la planilla.
func (w *Workbook) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// SheetNames lista las hojas en orden.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// FindSheet busca una hoja cuyo nombre normalizado contenga el substring.
func (w *Workbook) FindSheet(contains string) (string, bool) {
	needle := NormalizeHeader(contains)
	if needle == "" {
		return "", false
	}
	for _, name := range w.file.GetSheetList() {
		if strings.Contains(NormalizeHeader(name), needle) {
			return name, true
		}
	}
	return "", false
}

// pickSheet resuelve las opciones a un nombre de hoja concreto.
func (w *Workbook) pickSheet(opts SheetOptions) (string, error) {
	names := w.file.GetSheetList()
	if len(names) == 0 {
		return "", errors.New("la planilla no tiene hojas")
	}

	if opts.NameContains != "" {
		if name, ok := w.FindSheet(opts.NameContains); ok {
			return name, nil
		}
	}
	if opts.FallbackIndex >= 0 && opts.FallbackIndex < len(names) {
		return names[opts.FallbackIndex], nil
	}
	return names[0], nil
}

// ReadTable lee la hoja elegida como encabezados + filas de datos.
func (w *Workbook) ReadTable(opts SheetOptions) (*Table, error) {
	name, err := w.pickSheet(opts)
	if err != nil {
		return nil, err
	}
	return w.ReadTableByName(name, opts.HeaderRow)
}

// ReadTableByName lee una hoja puntual con los encabezados en headerRow.
func (w *Workbook) ReadTableByName(name string, headerRow int) (*Table, error) {
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer la hoja %q: %w", name, err)
	}
	if headerRow >= len(rows) {
		return nil, fmt.Errorf("la hoja %q no tiene filas de datos", name)
	}
	return &Table{
		Headers: rows[headerRow],
		Rows:    rows[headerRow+1:],
	}, nil
}

// ReadMatrix devuelve la hoja elegida como matriz cruda de celdas, para los
// exports de layout posicional fijo (ventas).
func (w *Workbook) ReadMatrix(opts SheetOptions) ([][]string, error) {
	name, err := w.pickSheet(opts)
	if err != nil {
		return nil, err
	}
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer la hoja %q: %w", name, err)
	}
	return rows, nil
}

// Cell indexa una fila posiblemente corta; fuera de rango es celda vacía.
// GetRows recorta las colas vacías, así que esto pasa en datos reales.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
