package internal

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"filippo.io/age"
	"github.com/xuri/excelize/v2"
)

type ExportFormat string

const (
	ExportXLSXFormat ExportFormat = "xlsx"
	ExportCSVFormat  ExportFormat = "csv"
	ExportJSONFormat ExportFormat = "json"
)

// encryptedSuffix marks age-encrypted files.
const encryptedSuffix = ".age"

// ageHeader is the first line of every age file.
const ageHeader = "age-encryption.org/"

// ExportFormatForPath infers the format from the extension, ignoring a
// trailing .age.
func ExportFormatForPath(path string) (ExportFormat, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.ToLower(path), encryptedSuffix)))
	switch ext {
	case ".xlsx":
		return ExportXLSXFormat, nil
	case ".csv":
		return ExportCSVFormat, nil
	case ".json":
		return ExportJSONFormat, nil
	}
	return "", fmt.Errorf("cannot infer export format from %q (want .xlsx, .csv or .json)", path)
}

// WriteExport renders ds in the given format.
func WriteExport(w io.Writer, format ExportFormat, ds Dataset) error {
	switch format {
	case ExportXLSXFormat:
		return ExportXLSX(w, ds)
	case ExportCSVFormat:
		return ExportCSV(w, ds.Bills)
	case ExportJSONFormat:
		return ExportJSON(w, ds)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// ExportFile writes ds to path. A non-empty passphrase encrypts the file with
// age; the caller picks the file name.
func ExportFile(path string, format ExportFormat, ds Dataset, passphrase string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if passphrase == "" {
		return WriteExport(f, format, ds)
	}

	enc, err := Encrypt(f, passphrase)
	if err != nil {
		return err
	}
	if err := WriteExport(enc, format, ds); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing encryption: %w", err)
	}
	return nil
}

// ExportXLSX writes a workbook with a Bills sheet and, when there are any
// payments, a Payments sheet. ParseBillsXLSX reads it back.
func ExportXLSX(w io.Writer, ds Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), billsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	rows := make([][]any, 0, len(ds.Bills))
	for _, b := range ds.Bills {
		rows = append(rows, []any{
			b.ID, b.Name, optionalCell(b.Amount), b.Varies, optionalCell(b.AvgAmount),
			string(b.Frequency), string(b.FrequencyType), string(b.FrequencyConfig),
			b.NextDue, string(b.Type), b.Account, b.Archived, b.AutoPayment, b.Notes,
		})
	}
	if err := writeSheet(f, billsSheet, billColumns, rows, bold); err != nil {
		return err
	}

	if len(ds.Payments) > 0 {
		if _, err := f.NewSheet(paymentsSheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", paymentsSheet, err)
		}
		rows = rows[:0]
		for _, p := range ds.Payments {
			rows = append(rows, []any{
				p.ID, p.BillID, p.BillName, string(p.BillType), p.Amount, p.PaymentDate, p.Notes,
			})
		}
		if err := writeSheet(f, paymentsSheet, paymentColumns, rows, bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func optionalCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// ExportCSV writes one row per bill using the same columns as the workbook.
func ExportCSV(w io.Writer, bills []Bill) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(billColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, b := range bills {
		record := []string{
			strconv.Itoa(b.ID),
			b.Name,
			optionalString(b.Amount),
			strconv.FormatBool(b.Varies),
			optionalString(b.AvgAmount),
			string(b.Frequency),
			string(b.FrequencyType),
			string(b.FrequencyConfig),
			b.NextDue,
			string(b.Type),
			b.Account,
			strconv.FormatBool(b.Archived),
			strconv.FormatBool(b.AutoPayment),
			b.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row for %q: %w", b.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func optionalString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ExportJSON writes the dataset in the {"bills": [...], "payments": [...]}
// shape ParseBillsJSON accepts.
func ExportJSON(w io.Writer, ds Dataset) error {
	if ds.Bills == nil {
		ds.Bills = []Bill{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// Encrypt wraps w so everything written is age-encrypted to passphrase. The
// returned writer must be closed to flush the last chunk.
func Encrypt(w io.Writer, passphrase string) (io.WriteCloser, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating recipient: %w", err)
	}
	enc, err := age.Encrypt(w, recipient)
	if err != nil {
		return nil, fmt.Errorf("starting encryption: %w", err)
	}
	return enc, nil
}

// Decrypt returns a reader over the plaintext of an age file.
func Decrypt(r io.Reader, passphrase string) (io.Reader, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating identity: %w", err)
	}
	plain, err := age.Decrypt(r, identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting (wrong passphrase?): %w", err)
	}
	return plain, nil
}

// IsEncrypted reports whether data starts with an age header.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ageHeader))
}
