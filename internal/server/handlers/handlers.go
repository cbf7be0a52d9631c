package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nikodp14/Panel-de-Operaciones/internal/config"
	"github.com/nikodp14/Panel-de-Operaciones/internal/model"
	"github.com/nikodp14/Panel-de-Operaciones/internal/parser"
	"github.com/nikodp14/Panel-de-Operaciones/internal/reconcile"
	"github.com/nikodp14/Panel-de-Operaciones/internal/refdata"
	"github.com/nikodp14/Panel-de-Operaciones/internal/store"
)

// Datasets que el panel conoce. Cada uno guarda solo su último archivo.
const (
	DatasetPublicacionesML = "ml-publicaciones"
	DatasetVariantesOdoo   = "odoo-variantes"
	DatasetVentasML        = "ml-ventas"
	DatasetVentasOdoo      = "odoo-ventas"
	DatasetConfiguracion   = "configuracion"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers agrupa los endpoints del panel.
type Handlers struct {
	store *store.Store
	cfg   *config.AppConfig
	log   *logrus.Logger
}

// NewHandlers crea los handlers.
func NewHandlers(st *store.Store, cfg *config.AppConfig) *Handlers {
	return &Handlers{
		store: st,
		cfg:   cfg,
		log:   config.GetLogger(),
	}
}

// Response es el sobre común de las respuestas JSON.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Code:    4040,
		Message: message,
	})
}

// RegisterRoutes registra las rutas del panel bajo /api.
func (h *Handlers) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ml/publicaciones", h.uploadDataset(DatasetPublicacionesML, h.validatePublicacionesML))
	rg.GET("/ml/publicaciones/info", h.datasetInfo(DatasetPublicacionesML))
	rg.GET("/ml/publicaciones/ultimo", h.datasetFile(DatasetPublicacionesML))

	rg.POST("/odoo/variantes", h.uploadDataset(DatasetVariantesOdoo, nil))
	rg.GET("/odoo/variantes/info", h.datasetInfo(DatasetVariantesOdoo))
	rg.GET("/odoo/variantes/ultimo", h.datasetFile(DatasetVariantesOdoo))

	rg.POST("/ml/ventas", h.uploadDataset(DatasetVentasML, nil))
	rg.GET("/ml/ventas/info", h.datasetInfo(DatasetVentasML))
	rg.GET("/ml/ventas/ultimo", h.datasetFile(DatasetVentasML))

	rg.POST("/odoo/ventas", h.uploadDataset(DatasetVentasOdoo, nil))
	rg.GET("/odoo/ventas/info", h.datasetInfo(DatasetVentasOdoo))
	rg.GET("/odoo/ventas/ultimo", h.datasetFile(DatasetVentasOdoo))

	rg.POST("/configuracion", h.uploadDataset(DatasetConfiguracion, nil))
	rg.GET("/configuracion/info", h.datasetInfo(DatasetConfiguracion))
	rg.GET("/configuracion/ultimo", h.datasetFile(DatasetConfiguracion))

	rg.GET("/validar/stock", h.ValidarStock)
	rg.GET("/validar/ventas", h.ValidarVentas)

	rg.GET("/despachos/:venta", h.GetDespacho)
	rg.PUT("/despachos/:venta", h.SetDespacho)
}

// ==================== Uploads ====================

// uploadDataset arma el handler de subida de un dataset: valida tamaño y
// extensión, corre la validación específica si la hay y guarda el archivo
// como "el último" del dataset.
func (h *Handlers) uploadDataset(dataset string, validate func([]byte) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, header, err := c.Request.FormFile("archivo")
		if err != nil {
			errorResponse(c, 1001, "Falta el archivo a subir.")
			return
		}
		defer file.Close()

		maxBytes := h.cfg.Business.MaxUploadMB * 1024 * 1024
		if header.Size > maxBytes {
			errorResponse(c, 1003, fmt.Sprintf("Archivo demasiado grande, máximo %d MB.", h.cfg.Business.MaxUploadMB))
			return
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".xlsx" && ext != ".xls" {
			errorResponse(c, 1002, "Solo se aceptan planillas .xlsx o .xls.")
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			errorResponse(c, 1002, "No se pudo leer el archivo subido.")
			return
		}

		if validate != nil {
			if err := validate(content); err != nil {
				errorResponse(c, 1004, err.Error())
				return
			}
		}

		info, err := h.store.SaveLatest(dataset, header.Filename, content)
		if err != nil {
			h.log.WithField("dataset", dataset).WithError(err).Error("no se pudo guardar el archivo")
			errorResponse(c, 5001, "No se pudo guardar el archivo en el servidor.")
			return
		}
		success(c, info)
	}
}

// validatePublicacionesML rechaza planillas que no son el export de
// Publicaciones de MercadoLibre (los encabezados reales están en la fila 3).
func (h *Handlers) validatePublicacionesML(data []byte) error {
	wb, err := parser.OpenWorkbook(data)
	if err != nil {
		return errors.New("No se pudo leer la planilla subida.")
	}
	defer wb.Close()

	rows, err := wb.ReadMatrix(parser.SheetOptions{NameContains: "publicaciones", FallbackIndex: 0})
	if err != nil || len(rows) < 3 {
		return errors.New("La planilla no tiene el formato de Publicaciones ML.")
	}

	header := make([]string, len(rows[2]))
	for i, cell := range rows[2] {
		header[i] = parser.NormalizeHeader(cell)
	}

	mlKeys := []string{"numero de publicacion", "titulo", "variantes", "sku", "en mi deposito"}
	ventasKeys := []string{"# de venta", "fecha de venta", "total (clp)"}

	pareceML := false
	for _, k := range mlKeys {
		if headerContains(header, k) {
			pareceML = true
			break
		}
	}
	pareceVentas := false
	for _, k := range ventasKeys {
		if headerContains(header, k) {
			pareceVentas = true
			break
		}
	}

	if !pareceML || pareceVentas {
		return errors.New("El archivo seleccionado no corresponde a Publicaciones de MercadoLibre. " +
			"Descárgalo desde MercadoLibre (Publicaciones → Modificar desde Excel → Descargar).")
	}
	return nil
}

func headerContains(header []string, key string) bool {
	for _, h := range header {
		if strings.Contains(h, key) {
			return true
		}
	}
	return false
}

func (h *Handlers) datasetInfo(dataset string) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := h.store.LatestInfo(dataset)
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "Aún no se ha cargado ningún archivo.")
			return
		}
		if err != nil {
			errorResponse(c, 5001, err.Error())
			return
		}
		success(c, info)
	}
}

func (h *Handlers) datasetFile(dataset string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, data, err := h.store.LatestBytes(dataset)
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "Aún no se ha cargado ningún archivo.")
			return
		}
		if err != nil {
			errorResponse(c, 5001, err.Error())
			return
		}
		c.Data(http.StatusOK, xlsxContentType, data)
	}
}

// ==================== Validaciones ====================

// ValidarStock corre la conciliación de stock sobre los últimos archivos
// cargados. Cualquier error de insumos aborta la corrida completa: nunca se
// devuelve un resultado parcial.
func (h *Handlers) ValidarStock(c *gin.Context) {
	mlInfo, mlData, err := h.store.LatestBytes(DatasetPublicacionesML)
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, 4001, "No hay Publicaciones ML cargadas aún.")
		return
	}
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}

	odooInfo, odooData, err := h.store.LatestBytes(DatasetVariantesOdoo)
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, 4002, "No hay Variantes Odoo cargadas aún.")
		return
	}
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}

	// configuracion.xlsx es opcional: sin él corren los defaults.
	var cfgData []byte
	if _, data, err := h.store.LatestBytes(DatasetConfiguracion); err == nil {
		cfgData = data
	}
	ref := refdata.LoadBytes(cfgData, h.log)

	mlWb, err := parser.OpenWorkbook(mlData)
	if err != nil {
		errorResponse(c, 4003, "No se pudieron leer las Publicaciones ML guardadas.")
		return
	}
	defer mlWb.Close()

	odooWb, err := parser.OpenWorkbook(odooData)
	if err != nil {
		errorResponse(c, 4004, "No se pudieron leer las Variantes Odoo guardadas.")
		return
	}
	defer odooWb.Close()

	// En el export de ML los encabezados reales están en la fila 3.
	mlTable, err := mlWb.ReadTable(parser.SheetOptions{NameContains: "publicaciones", FallbackIndex: 1, HeaderRow: 2})
	if err != nil {
		errorResponse(c, 4003, err.Error())
		return
	}
	odooTable, err := odooWb.ReadTable(parser.SheetOptions{FallbackIndex: 0, HeaderRow: 0})
	if err != nil {
		errorResponse(c, 4004, err.Error())
		return
	}

	listings, err := parser.ExtractListings(mlTable)
	if err != nil {
		errorResponse(c, 4005, err.Error())
		return
	}
	stock, err := parser.ExtractStock(odooTable)
	if err != nil {
		errorResponse(c, 4006, err.Error())
		return
	}

	engine := reconcile.NewStockEngine(ref)
	observations := engine.Reconcile(listings, stock)

	success(c, gin.H{
		"result": model.StockResult{
			Observations: observations,
			Counts:       model.CountStockActions(observations),
		},
		"publicacionesInfo": mlInfo,
		"variantesInfo":     odooInfo,
	})
}

// ValidarVentas corre la conciliación de ventas sobre los últimos archivos
// cargados, incluyendo la revalidación de códigos de despacho persistidos.
func (h *Handlers) ValidarVentas(c *gin.Context) {
	mlInfo, mlData, err := h.store.LatestBytes(DatasetVentasML)
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, 4011, "No hay Ventas ML cargadas aún.")
		return
	}
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}

	odooInfo, odooData, err := h.store.LatestBytes(DatasetVentasOdoo)
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, 4012, "No hay Ventas Odoo cargadas aún.")
		return
	}
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}

	mlWb, err := parser.OpenWorkbook(mlData)
	if err != nil {
		errorResponse(c, 4013, "No se pudieron leer las Ventas ML guardadas.")
		return
	}
	defer mlWb.Close()

	odooWb, err := parser.OpenWorkbook(odooData)
	if err != nil {
		errorResponse(c, 4014, "No se pudieron leer las Ventas Odoo guardadas.")
		return
	}
	defer odooWb.Close()

	mlRows, err := mlWb.ReadMatrix(parser.SheetOptions{FallbackIndex: 0})
	if err != nil {
		errorResponse(c, 4013, err.Error())
		return
	}
	odooRows, err := odooWb.ReadMatrix(parser.SheetOptions{FallbackIndex: 0})
	if err != nil {
		errorResponse(c, 4014, err.Error())
		return
	}

	sales := parser.ExtractSales(mlRows)
	erp := parser.ExtractErpSales(odooRows)

	dispatch, err := h.dispatchIndex()
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}

	engine := reconcile.NewSalesEngine(h.salesParams(), dispatch)
	observations := engine.Reconcile(sales, erp)

	success(c, gin.H{
		"result": model.SaleResult{
			Observations: observations,
			Counts:       model.CountSaleActions(observations),
		},
		"ventasMLInfo":   mlInfo,
		"ventasOdooInfo": odooInfo,
	})
}

// dispatchIndex carga los códigos de despacho indexados por venta normalizada.
func (h *Handlers) dispatchIndex() (reconcile.DispatchIndex, error) {
	codes, err := h.store.AllDispatchCodes()
	if err != nil {
		return nil, err
	}
	idx := make(reconcile.DispatchIndex, len(codes))
	for _, dc := range codes {
		idx[parser.NormalizeCode(dc.OrderID)] = reconcile.DispatchEntry{
			Code:           dc.Code,
			ProductChanged: dc.ProductChanged,
		}
	}
	return idx, nil
}

// salesParams arma los parámetros de negocio desde la configuración.
func (h *Handlers) salesParams() reconcile.SalesParams {
	params := reconcile.DefaultSalesParams()

	if cutoff, err := time.ParseInLocation("2006-01-02", h.cfg.Business.SalesCutoff, time.Local); err == nil {
		params.Cutoff = cutoff
	} else {
		h.log.WithField("sales_cutoff", h.cfg.Business.SalesCutoff).Warn("fecha de corte inválida, se usa el default")
	}
	if h.cfg.Business.VATFactor > 0 {
		params.VATFactor = decimal.NewFromFloat(h.cfg.Business.VATFactor)
	}
	if h.cfg.Business.ShippingSubsidy > 0 {
		params.ShippingSubsidy = decimal.NewFromFloat(h.cfg.Business.ShippingSubsidy)
	}
	return params
}

// ==================== Despachos ====================

// GetDespacho devuelve el código de despacho persistido de una venta.
func (h *Handlers) GetDespacho(c *gin.Context) {
	venta := parser.NormalizeCode(c.Param("venta"))
	if venta == "" {
		errorResponse(c, 1001, "Número de venta inválido.")
		return
	}

	rec, ok, err := h.store.GetDispatchCode(venta)
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}
	if !ok {
		notFound(c, "La venta no tiene código de despacho.")
		return
	}
	success(c, rec)
}

// SetDespacho guarda el código de despacho de una venta. Última escritura
// gana; el debounce de tipeo es responsabilidad del cliente.
func (h *Handlers) SetDespacho(c *gin.Context) {
	venta := parser.NormalizeCode(c.Param("venta"))
	if venta == "" {
		errorResponse(c, 1001, "Número de venta inválido.")
		return
	}

	var req struct {
		Code           string `json:"code"`
		ProductChanged bool   `json:"productChanged"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "Cuerpo de la petición inválido.")
		return
	}

	rec, err := h.store.SetDispatchCode(venta, strings.TrimSpace(req.Code), req.ProductChanged)
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}
	success(c, rec)
}
