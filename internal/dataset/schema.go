package dataset

import "strings"

// DefaultSynonyms maps known source column names (lowercased) to canonical
// names. The source spreadsheets are Spanish-first, with English variants
// from file imports.
var DefaultSynonyms = map[string]string{
	"fecha de pago": ColDate,
	"fecha":         ColDate,
	"payment date":  ColDate,
	"date":          ColDate,

	"banco":     ColCategory,
	"bank":      ColCategory,
	"categoría": ColCategory,
	"categoria": ColCategory,
	"category":  ColCategory,

	"subcategoría": ColSubcategory,
	"subcategoria": ColSubcategory,
	"subcategory":  ColSubcategory,

	"concepto":    ColConcept,
	"concept":     ColConcept,
	"descripción": ColConcept,
	"descripcion": ColConcept,
	"description": ColConcept,

	"monto":   ColAmount,
	"importe": ColAmount,
	"amount":  ColAmount,

	"status": ColStatus,
	"estado": ColStatus,

	"iva":        ColTaxAmount,
	"tax amount": ColTaxAmount,
	"taxamount":  ColTaxAmount,

	"aplica iva":  ColTaxApplies,
	"tax applies": ColTaxApplies,
	"taxapplies":  ColTaxApplies,

	"total c/iva":    ColTotal,
	"total con iva":  ColTotal,
	"total with tax": ColTotal,
	"totalwithtax":   ColTotal,

	"mes_num":     ColMonthNumber,
	"monthnumber": ColMonthNumber,
	"mes":         ColMonthLabel,
	"monthlabel":  ColMonthLabel,

	"año":  ColYear,
	"ano":  ColYear,
	"year": ColYear,
}

// NormalizeSchema maps raw column names onto the canonical set. Header names
// are whitespace-trimmed and matched case-insensitively against the synonym
// table; unrecognized columns pass through with only the trim applied.
// Columns whose normalized names collide are collapsed to the first
// occurrence (first wins, never merged). Cell values are not inspected.
func NormalizeSchema(t RawTable, synonyms map[string]string) RawTable {
	if synonyms == nil {
		synonyms = DefaultSynonyms
	}

	type keptCol struct {
		name string
		idx  int
	}
	seen := make(map[string]struct{}, len(t.Header))
	kept := make([]keptCol, 0, len(t.Header))
	for i, raw := range t.Header {
		name := strings.TrimSpace(raw)
		if canonical, ok := synonyms[foldHeader(name)]; ok {
			name = canonical
		}
		key := foldHeader(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, keptCol{name: name, idx: i})
	}

	out := RawTable{Header: make([]string, len(kept))}
	for i, c := range kept {
		out.Header[i] = c.name
	}
	out.Rows = make([][]string, len(t.Rows))
	for ri, row := range t.Rows {
		cells := make([]string, len(kept))
		for ci, c := range kept {
			cells[ci] = t.Cell(row, c.idx)
		}
		out.Rows[ri] = cells
	}
	return out
}
