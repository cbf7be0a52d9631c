package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "panel.db"), filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLatestReplacesPrevious(t *testing.T) {
	s := newTestStore(t)

	first, err := s.SaveLatest("ml-publicaciones", "publicaciones.xlsx", []byte("version 1"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.SaveLatest("ml-publicaciones", "publicaciones-v2.xlsx", []byte("version 2"))
	if err != nil {
		t.Fatal(err)
	}
	if first.FileName == second.FileName {
		t.Fatal("cada archivo guardado debe tener nombre propio")
	}

	info, data, err := s.LatestBytes("ml-publicaciones")
	if err != nil {
		t.Fatal(err)
	}
	if info.FileName != second.FileName {
		t.Fatalf("latest = %q, want %q", info.FileName, second.FileName)
	}
	if string(data) != "version 2" {
		t.Fatalf("contenido = %q, el último gana", data)
	}
}

func TestSaveLatestKeepsDatasetsApart(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SaveLatest("ml-publicaciones", "a.xlsx", []byte("publicaciones")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveLatest("odoo-variantes", "b.xlsx", []byte("variantes")); err != nil {
		t.Fatal(err)
	}

	_, data, err := s.LatestBytes("ml-publicaciones")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "publicaciones" {
		t.Fatalf("contenido cruzado entre datasets: %q", data)
	}
}

func TestLatestInfoNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.LatestInfo("ml-ventas"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, _, err := s.LatestBytes("ml-ventas"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDispatchCodeUpsert(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SetDispatchCode("2000123", "DESP-111", false); err != nil {
		t.Fatal(err)
	}
	// Última escritura gana.
	if _, err := s.SetDispatchCode("2000123", "DESP-222", true); err != nil {
		t.Fatal(err)
	}

	rec, ok, err := s.GetDispatchCode("2000123")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("esperaba encontrar el código")
	}
	if rec.Code != "DESP-222" || !rec.ProductChanged {
		t.Fatalf("rec = %+v", rec)
	}
}

func TestDispatchCodeMissing(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.GetDispatchCode("9999999")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("no esperaba código para una venta desconocida")
	}
}

func TestAllDispatchCodes(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SetDispatchCode("2000123", "DESP-111", false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetDispatchCode("2000456", "DESP-222", true); err != nil {
		t.Fatal(err)
	}

	codes, err := s.AllDispatchCodes()
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 2 {
		t.Fatalf("codes = %d, want 2", len(codes))
	}

	byOrder := make(map[string]bool, len(codes))
	for _, c := range codes {
		byOrder[c.OrderID] = c.ProductChanged
	}
	if byOrder["2000123"] || !byOrder["2000456"] {
		t.Fatalf("productChanged mal persistido: %v", byOrder)
	}
}
