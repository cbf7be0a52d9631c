package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var numberJunkRe = regexp.MustCompile(`[^0-9.\-]`)

// cleanNumber aplica la convención chilena: "." separa miles y "," decimales.
func cleanNumber(value string) string {
	s := strings.TrimSpace(value)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return numberJunkRe.ReplaceAllString(s, "")
}

// ParseNumber convierte una celda a número. Lo que no parsea vale 0:
// las planillas traen "-", vacíos y texto suelto en columnas numéricas.
func ParseNumber(value string) float64 {
	n, err := strconv.ParseFloat(cleanNumber(value), 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseMoney convierte una celda a un monto decimal exacto. Devuelve ok=false
// cuando la celda no es numérica para que el llamador distinga "0" de basura.
func ParseMoney(value string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(cleanNumber(value))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
