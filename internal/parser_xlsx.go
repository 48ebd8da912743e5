package internal

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook layout shared by the XLSX export and import.
const (
	billsSheet    = "Bills"
	paymentsSheet = "Payments"
)

var billColumns = []string{
	"ID", "Name", "Amount", "Varies", "Avg Amount", "Frequency", "Frequency Type",
	"Frequency Config", "Next Due", "Type", "Account", "Archived", "Auto Payment", "Notes",
}

var paymentColumns = []string{
	"ID", "Bill ID", "Bill Name", "Bill Type", "Amount", "Payment Date", "Notes",
}

// ParseBillsXLSX reads a workbook with a "Bills" sheet (or, failing that, the
// first sheet) and an optional "Payments" sheet. Columns are found by header
// name so extra or reordered columns are fine; "Name" and "Next Due" are required.
func ParseBillsXLSX(path string) (Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Dataset{}, fmt.Errorf("no sheets found in file")
	}
	sheet := sheets[0]
	if slices.Contains(sheets, billsSheet) {
		sheet = billsSheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Dataset{}, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	table, ok := findHeader(rows, "Name", "Next Due")
	if !ok {
		return Dataset{}, fmt.Errorf("could not find required columns (Name, Next Due) in sheet %s", sheet)
	}

	var ds Dataset
	for _, row := range table.rows {
		name := table.cell(row, "Name")
		if name == "" {
			continue
		}
		ds.Bills = append(ds.Bills, Bill{
			ID:              parseCellInt(table.cell(row, "ID")),
			Name:            name,
			Amount:          parseCellAmount(table.cell(row, "Amount")),
			Varies:          parseCellBool(table.cell(row, "Varies")),
			AvgAmount:       parseCellAmount(table.cell(row, "Avg Amount")),
			Frequency:       Frequency(strings.ToLower(table.cell(row, "Frequency"))),
			FrequencyType:   FrequencyType(table.cell(row, "Frequency Type")),
			FrequencyConfig: FrequencyConfig(table.cell(row, "Frequency Config")),
			NextDue:         table.cell(row, "Next Due"),
			Type:            BillType(strings.ToLower(table.cell(row, "Type"))),
			Account:         table.cell(row, "Account"),
			Archived:        parseCellBool(table.cell(row, "Archived")),
			AutoPayment:     parseCellBool(table.cell(row, "Auto Payment")),
			Notes:           table.cell(row, "Notes"),
		})
	}

	if slices.Contains(sheets, paymentsSheet) {
		ds.Payments, err = readPaymentsSheet(f)
		if err != nil {
			return Dataset{}, err
		}
	}
	return ds, nil
}

func readPaymentsSheet(f *excelize.File) ([]Payment, error) {
	rows, err := f.GetRows(paymentsSheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", paymentsSheet, err)
	}
	table, ok := findHeader(rows, "Amount", "Payment Date")
	if !ok {
		return nil, nil
	}

	var payments []Payment
	for _, row := range table.rows {
		amount := parseCellAmount(table.cell(row, "Amount"))
		date := table.cell(row, "Payment Date")
		if amount == nil || date == "" {
			continue
		}
		payments = append(payments, Payment{
			ID:          parseCellInt(table.cell(row, "ID")),
			BillID:      parseCellInt(table.cell(row, "Bill ID")),
			BillName:    table.cell(row, "Bill Name"),
			BillType:    BillType(strings.ToLower(table.cell(row, "Bill Type"))),
			Amount:      *amount,
			PaymentDate: date,
			Notes:       table.cell(row, "Notes"),
		})
	}
	return payments, nil
}

// sheetTable is the data below a located header row.
type sheetTable struct {
	cols map[string]int
	rows [][]string
}

// findHeader scans for the first row containing every required header.
func findHeader(rows [][]string, required ...string) (sheetTable, bool) {
	for i, row := range rows {
		cols := make(map[string]int, len(row))
		for j, cell := range row {
			cols[strings.TrimSpace(cell)] = j
		}
		found := true
		for _, r := range required {
			if _, ok := cols[r]; !ok {
				found = false
				break
			}
		}
		if found {
			return sheetTable{cols: cols, rows: rows[i+1:]}, true
		}
	}
	return sheetTable{}, false
}

func (t sheetTable) cell(row []string, header string) string {
	j, ok := t.cols[header]
	if !ok || j >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[j])
}

func parseCellAmount(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseCellInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseCellBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "1", "x":
		return true
	}
	return false
}

func init() {
	RegisterParser("xlsx", ParserFunc(ParseBillsXLSX))
}
