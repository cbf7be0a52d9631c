package parser

import "strings"

// DetectColumn busca una columna por lista de candidatos normalizados:
// primero match exacto, después por substring, en el orden de los candidatos.
// Devuelve -1 si ninguna columna coincide; el llamador decide si eso es fatal.
func DetectColumn(headers []string, candidates []string) int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	for _, candidate := range candidates {
		for i, h := range normalized {
			if h == candidate {
				return i
			}
		}
	}
	for _, candidate := range candidates {
		for i, h := range normalized {
			if h != "" && strings.Contains(h, candidate) {
				return i
			}
		}
	}
	return -1
}
