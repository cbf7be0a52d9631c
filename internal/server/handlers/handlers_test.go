package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/nikodp14/Panel-de-Operaciones/internal/config"
	"github.com/nikodp14/Panel-de-Operaciones/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	st, err := store.New(filepath.Join(dir, "panel.db"), filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	engine := gin.New()
	h := NewHandlers(st, config.DefaultConfig())
	h.RegisterRoutes(engine.Group("/api"))
	return engine
}

func buildSheet(t *testing.T, name string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func upload(t *testing.T, router *gin.Engine, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("archivo", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("respuesta no es JSON: %v\n%s", err, w.Body.String())
	}
	return resp
}

func mlPublicaciones(t *testing.T) []byte {
	return buildSheet(t, "Publicaciones", [][]interface{}{
		{"Publicaciones"},
		{"Resumen del export"},
		{"Número de publicación", "SKU", "Título", "Variantes", "En mi depósito"},
		{"MLC111", "", "Espejo retrovisor", "Rojo", 0},
		{"MLC222", "", "Tapa espejo", "-", 1},
	})
}

func odooVariantes(t *testing.T) []byte {
	return buildSheet(t, "Variantes", [][]interface{}{
		{"Nombre", "Código de barras", "Valores de las variantes/Valor", "Cantidad a mano"},
		{"Espejo retrovisor rojo", "111-1", "Rojo", 5},
	})
}

func TestUploadRejectsWrongExtension(t *testing.T) {
	router := newTestRouter(t)

	w := upload(t, router, "/api/configuracion", "notas.txt", []byte("texto"))
	resp := decode(t, w)
	if resp.Code == 0 {
		t.Fatalf("esperaba rechazo, got %+v", resp)
	}
}

func TestUploadRejectsWrongWorkbookForPublicaciones(t *testing.T) {
	router := newTestRouter(t)

	// Una planilla de ventas no pasa el chequeo de Publicaciones ML.
	ventas := buildSheet(t, "Ventas", [][]interface{}{
		{"Ventas"},
		{""},
		{"# de venta", "Fecha de venta", "Estado"},
	})
	w := upload(t, router, "/api/ml/publicaciones", "ventas.xlsx", ventas)
	resp := decode(t, w)
	if resp.Code == 0 {
		t.Fatalf("esperaba rechazo, got %+v", resp)
	}
}

func TestUploadAndInfo(t *testing.T) {
	router := newTestRouter(t)

	// Sin archivo cargado la info es 404.
	req := httptest.NewRequest(http.MethodGet, "/api/ml/publicaciones/info", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	if resp := decode(t, upload(t, router, "/api/ml/publicaciones", "pub.xlsx", mlPublicaciones(t))); resp.Code != 0 {
		t.Fatalf("upload falló: %+v", resp)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/ml/publicaciones/info", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestValidarStockRequiresUploads(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/validar/stock", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decode(t, w)
	if resp.Code == 0 {
		t.Fatalf("esperaba error sin archivos cargados, got %+v", resp)
	}
	if !strings.Contains(resp.Message, "Publicaciones ML") {
		t.Fatalf("mensaje = %q", resp.Message)
	}
}

func TestValidarStockEndToEnd(t *testing.T) {
	router := newTestRouter(t)

	if resp := decode(t, upload(t, router, "/api/ml/publicaciones", "pub.xlsx", mlPublicaciones(t))); resp.Code != 0 {
		t.Fatalf("upload publicaciones: %+v", resp)
	}
	if resp := decode(t, upload(t, router, "/api/odoo/variantes", "var.xlsx", odooVariantes(t))); resp.Code != 0 {
		t.Fatalf("upload variantes: %+v", resp)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/validar/stock", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decode(t, w)
	if resp.Code != 0 {
		t.Fatalf("validar/stock: %+v", resp)
	}

	var payload struct {
		Result struct {
			Observations []struct {
				Publication string `json:"publication"`
				Action      string `json:"action"`
				Detail      string `json:"detail"`
			} `json:"observations"`
			Counts map[string]int `json:"counts"`
		} `json:"result"`
	}
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatal(err)
	}

	// La fila con variante "-" se descarta: queda una observación.
	if len(payload.Result.Observations) != 1 {
		t.Fatalf("observaciones = %d, want 1", len(payload.Result.Observations))
	}
	obs := payload.Result.Observations[0]
	if obs.Publication != "MLC111" || obs.Action != "SUBIR" {
		t.Fatalf("observación inesperada: %+v", obs)
	}
	if payload.Result.Counts["TODOS"] != 1 || payload.Result.Counts["SUBIR"] != 1 {
		t.Fatalf("counts = %v", payload.Result.Counts)
	}
}

func TestDespachosPutAndGet(t *testing.T) {
	router := newTestRouter(t)

	body := bytes.NewBufferString(`{"code":"DESP-111","productChanged":true}`)
	req := httptest.NewRequest(http.MethodPut, "/api/despachos/2000123", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if resp := decode(t, w); resp.Code != 0 {
		t.Fatalf("put: %+v", resp)
	}

	// El número de venta se normaliza: "2000-123" y "2000123" son la misma.
	req = httptest.NewRequest(http.MethodGet, "/api/despachos/2000-123", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d\n%s", w.Code, w.Body.String())
	}

	var rec struct {
		Data struct {
			Code           string `json:"code"`
			ProductChanged bool   `json:"productChanged"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Data.Code != "DESP-111" || !rec.Data.ProductChanged {
		t.Fatalf("rec = %+v", rec.Data)
	}
}

func TestDespachoUnknownIs404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/despachos/9999999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
