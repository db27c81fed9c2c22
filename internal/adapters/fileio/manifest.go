// internal/adapters/fileio/manifest.go
package fileio

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ammerola/stockledger/internal/core/domain"
)

var (
	manifestHeaderRe = regexp.MustCompile(`(?i)\bSKU\b.*\bQTY\b`)
	manifestFooterRe = regexp.MustCompile(`(?i)^(TOTAL|TOTAL UNITS|END OF MANIFEST)\b`)
	manifestItemRe   = regexp.MustCompile(`^([A-Za-z0-9._-]*\d[A-Za-z0-9._-]*)\s+(.+?)\s+(\d+)$`)
	manifestSerialRe = regexp.MustCompile(`(?i)^(S/N|SERIALS?)\s*:\s*(.+)$`)
	manifestBatchRe  = regexp.MustCompile(`(?i)^(LOT|BATCH)\s*:\s*(\S+)$`)
	spacesRe         = regexp.MustCompile(`\s+`)
)

// ReadManifest extracts import rows from a supplier packing manifest PDF.
//
// Item lines look like "SKU  Product name  QTY" and sit between a header line
// naming the SKU and QTY columns and a TOTAL footer. An item line may be
// followed by "S/N: a, b, c" (serialized) or "LOT: code" (batch).
func ReadManifest(r io.ReaderAt, size int64, maxRows int) ([]domain.RawImportRow, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var lines []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}

	rows := ParseManifestLines(lines)
	if maxRows > 0 && len(rows) > maxRows {
		return nil, fmt.Errorf("file exceeds the limit of %d rows", maxRows)
	}
	return rows, nil
}

// ParseManifestLines turns manifest text lines into import rows. Line numbers
// refer to the extracted text lines.
func ParseManifestLines(lines []string) []domain.RawImportRow {
	start := 0
	for i, line := range lines {
		if manifestHeaderRe.MatchString(line) {
			start = i + 1
			break
		}
	}

	var rows []domain.RawImportRow
	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(spacesRe.ReplaceAllString(lines[i], " "))
		if line == "" {
			continue
		}
		if manifestFooterRe.MatchString(line) {
			break
		}

		if m := manifestSerialRe.FindStringSubmatch(line); m != nil && len(rows) > 0 {
			last := rows[len(rows)-1].Values
			last[domain.ColumnProductType] = string(domain.ProductSerialized)
			last[domain.ColumnIdentifiers] = joinIdentifiers(last[domain.ColumnIdentifiers], m[2])
			continue
		}
		if m := manifestBatchRe.FindStringSubmatch(line); m != nil && len(rows) > 0 {
			last := rows[len(rows)-1].Values
			last[domain.ColumnProductType] = string(domain.ProductBatch)
			last[domain.ColumnIdentifiers] = m[2]
			continue
		}

		m := manifestItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rows = append(rows, domain.RawImportRow{
			Line: i + 1,
			Values: map[string]string{
				domain.ColumnSKU:         m[1],
				domain.ColumnProductName: strings.TrimSpace(m[2]),
				domain.ColumnQuantity:    m[3],
				domain.ColumnNotes:       "packing manifest",
			},
		})
	}
	return rows
}

func joinIdentifiers(existing, more string) string {
	if existing == "" {
		return more
	}
	return existing + "," + more
}
