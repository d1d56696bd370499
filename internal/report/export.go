package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"networth/internal/log"
	"networth/internal/storage"
)

type DataKind string

const (
	KindAccounts     DataKind = "accounts"
	KindTransactions DataKind = "transactions"
	KindEntries      DataKind = "entries"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var (
	ErrInvalidDataKind = errors.New("invalid export data kind")
	ErrInvalidFormat   = errors.New("invalid export format")
)

func ParseDataKind(s string) (DataKind, error) {
	switch DataKind(s) {
	case KindAccounts, KindTransactions, KindEntries:
		return DataKind(s), nil
	}
	return "", ErrInvalidDataKind
}

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX, FormatPDF:
		return Format(s), nil
	}
	return "", ErrInvalidFormat
}

var contentTypes = map[Format]string{
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
}

var kindTitles = map[DataKind]string{
	KindAccounts:     "Accounts",
	KindTransactions: "Transactions",
	KindEntries:      "Balance Entries",
}

// Dataset is the format-independent tabular form of one export kind.
// Cells carry display labels, not raw enum codes.
type Dataset struct {
	Kind   DataKind
	Header []string
	Rows   [][]string
}

// ExportFile is a fully rendered export. Rendering happens into memory
// before any byte reaches the client, so a failure never leaves a partial
// download behind.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders the user's data of the given kind into the given format.
func (s *Service) Export(ctx context.Context, userID int64, kind DataKind, format Format) (*ExportFile, error) {
	if _, ok := contentTypes[format]; !ok {
		return nil, ErrInvalidFormat
	}
	ds, err := s.Dataset(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = WriteCSV(&buf, ds)
	case FormatXLSX:
		err = WriteXLSX(&buf, ds)
	case FormatPDF:
		err = WritePDF(&buf, ds, s.now())
	}
	if err != nil {
		return nil, fmt.Errorf("render %s export as %s: %w", kind, format, err)
	}

	s.logger.InfoContext(ctx, "export rendered",
		log.FieldUserID, userID,
		log.FieldKind, string(kind),
		log.FieldFormat, string(format),
		log.FieldRows, len(ds.Rows))
	return &ExportFile{
		Filename:    fmt.Sprintf("%s.%s", kind, format),
		ContentType: contentTypes[format],
		Data:        buf.Bytes(),
	}, nil
}

// Dataset builds the logical rows for one export kind. All three formats
// render the same rows.
func (s *Service) Dataset(ctx context.Context, userID int64, kind DataKind) (*Dataset, error) {
	switch kind {
	case KindAccounts:
		return s.accountsDataset(ctx, userID)
	case KindTransactions:
		return s.transactionsDataset(ctx, userID)
	case KindEntries:
		return s.entriesDataset(ctx, userID)
	}
	return nil, ErrInvalidDataKind
}

func (s *Service) accountsDataset(ctx context.Context, userID int64) (*Dataset, error) {
	accounts, err := s.repo.ListAccounts(ctx, userID, "name", "asc")
	if err != nil {
		return nil, err
	}
	ds := &Dataset{
		Kind:   KindAccounts,
		Header: []string{"Name", "Type", "Classification", "Asset Type", "Currency", "Institution", "Account Number", "Latest Balance"},
	}
	for _, a := range accounts {
		ds.Rows = append(ds.Rows, []string{
			a.Name,
			a.Type.Label(),
			a.Classification.Label(),
			a.AssetType.Label(),
			a.Currency,
			a.Institution,
			a.AccountNumber,
			a.Balance.StringFixed(2),
		})
	}
	return ds, nil
}

func (s *Service) transactionsDataset(ctx context.Context, userID int64) (*Dataset, error) {
	txs, err := s.repo.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	// Account names are resolved per ID; deactivated accounts still resolve
	// so old transactions keep their names.
	names := make(map[int64]string)
	ds := &Dataset{
		Kind:   KindTransactions,
		Header: []string{"Date", "Account", "Type", "Category", "Amount", "Description"},
	}
	for _, t := range txs {
		name, ok := names[t.AccountID]
		if !ok {
			a, err := s.repo.GetAccount(ctx, userID, t.AccountID)
			if err != nil {
				return nil, fmt.Errorf("resolve account %d: %w", t.AccountID, err)
			}
			name = a.Name
			names[t.AccountID] = name
		}
		ds.Rows = append(ds.Rows, []string{
			t.Date.Format("2006-01-02"),
			name,
			t.Type.Label(),
			t.Category.Label(),
			t.Amount.StringFixed(2),
			t.Description,
		})
	}
	return ds, nil
}

func (s *Service) entriesDataset(ctx context.Context, userID int64) (*Dataset, error) {
	entries, err := s.repo.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{
		Kind:   KindEntries,
		Header: []string{"Account", "Month", "Year", "Balance", "Notes"},
	}
	for _, e := range entries {
		ds.Rows = append(ds.Rows, []string{
			e.Account.Name,
			time.Month(e.Entry.Month).String(),
			fmt.Sprintf("%d", e.Entry.Year),
			e.Entry.Balance.StringFixed(2),
			e.Entry.Notes,
		})
	}
	return ds, nil
}

func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range ds.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, ds *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, col := range ds.Header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	for r, row := range ds.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

// WritePDF renders the dataset as a landscape table with a generated-on
// footer and row count.
func WritePDF(w io.Writer, ds *Dataset, generatedAt time.Time) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Net Worth Tracker: "+kindTitles[ds.Kind])
	pdf.Ln(12)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(ds.Header))

	pdf.SetFont("Helvetica", "B", 9)
	for _, col := range ds.Header {
		pdf.CellFormat(colW, 7, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range ds.Rows {
		for _, v := range row {
			pdf.CellFormat(colW, 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 6, fmt.Sprintf("Generated on %s. %d rows.",
		generatedAt.Format("Jan 2, 2006 15:04"), len(ds.Rows)))

	return pdf.Output(w)
}
