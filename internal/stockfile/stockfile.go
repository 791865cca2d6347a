// Package stockfile reads admin-uploaded spreadsheets and builds the
// delivery files sent to buyers.
package stockfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"mailshop/internal/model"

	"github.com/xuri/excelize/v2"
)

var ErrNoDataRows = errors.New("spreadsheet has no data rows")

// Headers returns the expected header row of a service's stock file.
func Headers(service model.Service) []string {
	switch service {
	case model.ServiceHotmail:
		return []string{"Email", "Password", "Recovery Email", "Phone"}
	case model.ServiceOutlook:
		return []string{"Email", "Password", "First Name", "Last Name", "Country"}
	case model.ServiceFBGmail:
		return []string{"Email", "Password", "Recovery Email", "DOB"}
	}
	return nil
}

// ReadRows parses an uploaded .xlsx file and returns the credential
// rows after the header. Blank rows are skipped.
func ReadRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoDataRows
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) <= 1 {
		return nil, ErrNoDataRows
	}

	var data [][]string
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		data = append(data, row)
	}
	if len(data) == 0 {
		return nil, ErrNoDataRows
	}
	return data, nil
}

// WriteDelivery writes purchased rows into a temp text file, one
// pipe-joined credential tuple per line, and returns the path. The
// caller removes the file after sending it.
func WriteDelivery(rows []model.StockRow) (string, error) {
	tmp, err := os.CreateTemp("", "accounts-*.txt")
	if err != nil {
		return "", err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(tmp, strings.Join(row.Fields, "|")); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", err
		}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
