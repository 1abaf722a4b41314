package businessflow

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// xlsxSheet is one worksheet of an export workbook
type xlsxSheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// buildWorkbook renders the sheets in order; the first one replaces the default sheet
func buildWorkbook(sheets ...xlsxSheet) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	usedNames := map[string]bool{}
	for i, sheet := range sheets {
		baseName := sanitizeSheetName(sheet.Name)
		name := baseName
		idx := 1
		for usedNames[name] {
			idx++
			name = truncateSheetName(fmt.Sprintf("%s_%d", baseName, idx))
		}
		usedNames[name] = true

		if i == 0 {
			if err := xl.SetSheetName(xl.GetSheetName(0), name); err != nil {
				return nil, err
			}
		} else if _, err := xl.NewSheet(name); err != nil {
			return nil, err
		}

		header := sheet.Header
		if err := xl.SetSheetRow(name, "A1", &header); err != nil {
			return nil, err
		}
		for ri, row := range sheet.Rows {
			record := row
			cellRef, err := excelize.CoordinatesToCellName(1, ri+2)
			if err != nil {
				return nil, err
			}
			if err := xl.SetSheetRow(name, cellRef, &record); err != nil {
				return nil, err
			}
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain : \ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := replacer.Replace(name)
	return truncateSheetName(strings.TrimSpace(safe))
}

func truncateSheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	if name == "" {
		return "Sheet"
	}
	return name
}

// ExportFile is a rendered download
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
