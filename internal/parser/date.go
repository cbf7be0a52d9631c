package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Los exports mezclan seriales de Excel, fechas largas en español
// ("16 de febrero de 2026 12:33 hs."), ISO y DD-MM-YYYY.
var (
	spanishDateRe = regexp.MustCompile(`^(\d{1,2})\s+de\s+([a-záéíóúñ]+)\s+de\s+(\d{4})(?:\s+(\d{1,2}):(\d{2}))?`)
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	dmyDateRe     = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}`)
)

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// excelEpoch es el día 0 del calendario de Excel (convención 1900 con el
// bug del año bisiesto ya descontado).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.Local)

// minExcelSerial acota los seriales aceptados (20000 ≈ octubre de 1954).
const minExcelSerial = 20000

// fallbackLayouts se intentan al final, en orden.
var fallbackLayouts = []string{
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/2006",
}

// ParseDate interpreta una celda de fecha. Los números son seriales de Excel
// (se descarta la hora); los strings se prueban en orden: formato largo
// español, ISO, DD-MM-YYYY y layouts genéricos. ok=false significa
// "no parseable": el llamador salta la fila, nunca inventa una fecha.
func ParseDate(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}

	// Solo números en el rango de fechas modernas cuentan como serial: un
	// "16" suelto en la celda no es una fecha de 1900.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < minExcelSerial {
			return time.Time{}, false
		}
		return excelEpoch.AddDate(0, 0, int(serial)), true
	}

	lower := strings.ToLower(s)

	if m := spanishDateRe.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		month, ok := spanishMonths[m[2]]
		if !ok {
			return time.Time{}, false
		}
		hour, minute := 0, 0
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
		}
		return time.Date(year, month, day, hour, minute, 0, 0, time.Local), true
	}

	if isoDateRe.MatchString(lower) {
		if t, err := time.ParseInLocation("2006-01-02", lower[:10], time.Local); err == nil {
			return t, true
		}
	}

	if dmyDateRe.MatchString(lower) {
		if t, err := time.ParseInLocation("02-01-2006", lower[:10], time.Local); err == nil {
			return t, true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
