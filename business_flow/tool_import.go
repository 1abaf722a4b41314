package businessflow

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aetherinc/aether-waitlist/app/dto"
)

// ToolImportRow is one accepted line of a catalog file
type ToolImportRow struct {
	Line        int
	Name        string
	Category    string
	Type        []string
	License     string
	Description string
	URL         string
	Pricing     *string
	IsActive    bool
}

func (r ToolImportRow) input() *toolInput {
	return &toolInput{
		name:        r.Name,
		category:    r.Category,
		description: r.Description,
		license:     r.License,
		url:         r.URL,
		pricing:     r.Pricing,
		isActive:    r.IsActive,
		tags:        NormalizeTags(r.Type),
	}
}

var toolImportColumns = []string{"name", "category", "type", "license", "description", "url", "pricing", "isactive"}

var requiredImportColumns = []string{"name", "category", "description"}

// ParseToolsTSV reads a tab-separated catalog whose first row names the columns
// (name, category, type, license, description, url, pricing, isActive; any order, any case).
// type holds comma-separated tags. Bad rows come back as row errors with their line numbers;
// a missing or unusable header is a hard error.
func ParseToolsTSV(r io.Reader) ([]ToolImportRow, []dto.ToolImportRowError, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("import file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, known := range toolImportColumns {
			if key == known {
				index[key] = i
			}
		}
	}
	for _, col := range requiredImportColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("header is missing the %q column", col)
		}
	}

	var (
		rows      []ToolImportRow
		rowErrors []dto.ToolImportRowError
		byName    = map[string]int{}
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			rowErrors = append(rowErrors, dto.ToolImportRowError{Line: line, Message: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		if isBlankRecord(record) {
			continue
		}

		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := ToolImportRow{
			Line:        line,
			Name:        field("name"),
			Category:    field("category"),
			License:     field("license"),
			Description: field("description"),
			URL:         field("url"),
		}
		if row.Name == "" || row.Category == "" || row.Description == "" {
			rowErrors = append(rowErrors, dto.ToolImportRowError{Line: line, Message: "name, category and description are required"})
			continue
		}
		if t := field("type"); t != "" {
			row.Type = strings.Split(t, ",")
		}
		if p := field("pricing"); p != "" {
			row.Pricing = &p
		}
		active, err := parseImportBool(field("isactive"))
		if err != nil {
			rowErrors = append(rowErrors, dto.ToolImportRowError{Line: line, Message: err.Error()})
			continue
		}
		row.IsActive = active

		// a repeated name replaces the earlier row
		if prev, ok := byName[row.Name]; ok {
			rows[prev] = row
			continue
		}
		byName[row.Name] = len(rows)
		rows = append(rows, row)
	}

	return rows, rowErrors, nil
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseImportBool accepts the spellings spreadsheets tend to produce; empty means active
func parseImportBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "true", "1", "yes", "y", "active":
		return true, nil
	case "false", "0", "no", "n", "inactive":
		return false, nil
	default:
		return false, fmt.Errorf("isActive must be true or false, got %q", s)
	}
}
