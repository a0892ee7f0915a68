package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/tealeg/xlsx"
)

// Table is a parsed worksheet: the first row as headers, every following
// row as a map of trimmed header to trimmed cell value. Keying rows by
// header keeps imports correct when operators reorder columns.
type Table struct {
	Sheet   string
	Headers []string
	Rows    []map[string]string
}

// ParseError carries an operator-facing message in French alongside the
// underlying cause. The message is safe to surface in the back office.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads an xlsx workbook and extracts the named sheet. The sheet name
// match is case-insensitive. A missing sheet, an unreadable workbook, a
// sheet without a header row, or a sheet without a single data row all fail
// loudly rather than degrade.
func Parse(buf []byte, sheetName string) (*Table, error) {
	wb, err := xlsx.OpenBinary(buf)
	if err != nil {
		return nil, &ParseError{Message: "Le fichier fourni n'est pas un classeur Excel valide", Err: err}
	}
	if len(wb.Sheets) == 0 {
		return nil, &ParseError{Message: "Le classeur ne contient aucune feuille"}
	}

	sheet := findSheet(wb, sheetName)
	if sheet == nil {
		return nil, &ParseError{
			Message: fmt.Sprintf("Feuille %q introuvable. Feuilles disponibles : %s", sheetName, strings.Join(sheetNames(wb), ", ")),
		}
	}
	if sheet.MaxRow == 0 || len(sheet.Rows) == 0 {
		return nil, &ParseError{Message: fmt.Sprintf("La feuille %q est vide, ligne d'en-tête attendue", sheet.Name)}
	}

	headers := cellValues(sheet.Rows[0], 0)
	if len(headers) == 0 {
		return nil, &ParseError{Message: fmt.Sprintf("La feuille %q n'a pas de ligne d'en-tête", sheet.Name)}
	}

	table := &Table{Sheet: sheet.Name, Headers: headers}
	for i := 1; i < len(sheet.Rows); i++ {
		cells := cellValues(sheet.Rows[i], len(headers))
		if isBlank(cells) {
			continue
		}
		row := make(map[string]string, len(headers))
		for j, header := range headers {
			row[header] = cells[j]
		}
		table.Rows = append(table.Rows, row)
	}
	if len(table.Rows) == 0 {
		return nil, &ParseError{Message: fmt.Sprintf("La feuille %q ne contient aucune ligne de données sous l'en-tête", sheet.Name)}
	}
	return table, nil
}

func findSheet(wb *xlsx.File, name string) *xlsx.Sheet {
	for _, sheet := range wb.Sheets {
		if strings.EqualFold(sheet.Name, name) {
			return sheet
		}
	}
	return nil
}

func sheetNames(wb *xlsx.File) []string {
	names := make([]string, 0, len(wb.Sheets))
	for _, sheet := range wb.Sheets {
		names = append(names, sheet.Name)
	}
	return names
}

// cellValues extracts trimmed strings from a row, padded to width when the
// trailing cells are absent.
func cellValues(row *xlsx.Row, width int) []string {
	out := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		out = append(out, strings.TrimSpace(cell.String()))
	}
	for len(out) < width {
		out = append(out, "")
	}
	// Drop trailing empties on the header row (width 0).
	if width == 0 {
		for len(out) > 0 && out[len(out)-1] == "" {
			out = out[:len(out)-1]
		}
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
