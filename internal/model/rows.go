package model

// ListingRow es una publicación de MercadoLibre (una fila del export
// "Publicaciones → Modificar desde Excel").
type ListingRow struct {
	Publication           string `json:"publication"`           // valor crudo de "Número de publicación"
	NormalizedPublication string `json:"normalizedPublication"` // sin prefijo MLC ni separadores
	Title                 string `json:"title"`
	VariantRaw            string `json:"variantRaw"` // columna "Variantes" tal como viene
	Stock                 int    `json:"stock"`      // "En mi depósito", nunca negativo
}

// StockRow es una variante de producto del export de inventario de Odoo.
// El código de barras puede multiplexar varios códigos ML separados por "/"
// y llevar un sufijo "-N" que se descarta.
type StockRow struct {
	Barcode string `json:"barcode"`
	Variant string `json:"variant"` // "Valores de las variantes", ya normalizada
	Name    string `json:"name"`    // nombre de producto, ya normalizado
	Stock   int    `json:"stock"`   // "Cantidad a mano", nunca negativo
}

// StockConfig es el tope de stock ML configurado para una publicación.
type StockConfig struct {
	MaxStock     int `json:"maxStock"`     // máximo permitido en ML, en unidades físicas
	UnitsPerPack int `json:"unitsPerPack"` // unidades físicas por pack publicado
}

// DefaultStockConfig aplica cuando la publicación no está en la hoja
// "STOCK ML" de configuracion.xlsx.
func DefaultStockConfig() StockConfig {
	return StockConfig{MaxStock: 2, UnitsPerPack: 1}
}

// SaleRow es una venta del export de MercadoLibre (layout de columnas fijo).
type SaleRow struct {
	OrderID         string `json:"orderId"`
	DateRaw         string `json:"dateRaw"`
	Status          string `json:"status"`
	TotalRaw        string `json:"totalRaw"`
	ShippingIncome  string `json:"shippingIncome"`
	ShippingCost    string `json:"shippingCost"`
	PublicationCode string `json:"publicationCode"`
	ListingTitle    string `json:"listingTitle"`
	ListingVariant  string `json:"listingVariant"`
}

// ErpSale es una venta registrada en Odoo: número de venta y cantidad
// entregada. Las ventas duplicadas se suman por número.
type ErpSale struct {
	OrderID       string `json:"orderId"`
	DispatchedQty int    `json:"dispatchedQty"`
}

// DispatchCode es el código de despacho que el operador ingresa para una
// venta. Es la única entidad durable entre corridas: última escritura gana.
type DispatchCode struct {
	OrderID        string `json:"orderId"`
	Code           string `json:"code"`
	ProductChanged bool   `json:"productChanged"` // "cambié el producto": no revalidar
	UpdatedAt      string `json:"updatedAt"`      // ISO 8601
}
