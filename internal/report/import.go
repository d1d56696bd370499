package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"networth/internal/core"
	"networth/internal/log"
)

// ImportReport summarizes one CSV import. Imports are best-effort: bad
// rows are skipped and reported, good rows land regardless.
type ImportReport struct {
	Imported int
	Errors   []string
}

func (r *ImportReport) rowError(line int, format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf("row %d: %s", line, fmt.Sprintf(format, args...)))
}

// ImportEntries reads a balance-entries CSV (columns account_name, month,
// year, balance, optional notes) and upserts one entry per row. Unknown
// accounts and invalid years skip the row; an unparseable balance imports
// as zero with a warning, matching the lenient parser contract.
func (s *Service) ImportEntries(ctx context.Context, userID int64, r io.Reader) (ImportReport, error) {
	var report ImportReport

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return report, errors.New("empty file")
	}
	if err != nil {
		return report, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header, []string{"account_name", "month", "year", "balance"}, []string{"notes"})
	if err != nil {
		return report, err
	}

	// Account names repeat across rows; cache the lookups.
	accounts := make(map[string]*core.Account)

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.rowError(line, "unreadable: %v", err)
			continue
		}

		name := strings.TrimSpace(field(row, cols["account_name"]))
		if name == "" {
			report.rowError(line, "missing account name")
			continue
		}
		account, ok := accounts[name]
		if !ok {
			a, err := s.repo.GetAccountByName(ctx, userID, name)
			if errors.Is(err, core.ErrNotFound) {
				accounts[name] = nil
			} else if err != nil {
				return report, fmt.Errorf("look up account %q: %w", name, err)
			} else {
				accounts[name] = &a
			}
			account = accounts[name]
		}
		if account == nil {
			report.rowError(line, "unknown account %q", name)
			continue
		}

		year, err := core.ParseYear(field(row, cols["year"]))
		if err != nil {
			report.rowError(line, "invalid year %q", field(row, cols["year"]))
			continue
		}
		month := core.ParseMonth(field(row, cols["month"]))

		balance, ok := core.ParseBalance(field(row, cols["balance"]))
		if !ok {
			report.rowError(line, "unparseable balance %q, imported as 0", field(row, cols["balance"]))
			balance = decimal.Zero
		}

		entry := core.AccountEntry{
			AccountID: account.ID,
			Month:     month,
			Year:      year,
			Balance:   balance,
			Notes:     field(row, cols["notes"]),
		}
		if err := s.repo.UpsertEntry(ctx, entry); err != nil {
			report.rowError(line, "save failed: %v", err)
			continue
		}
		report.Imported++
	}

	s.logger.InfoContext(ctx, "entries import finished",
		log.FieldUserID, userID,
		log.FieldRows, report.Imported,
		"row_errors", len(report.Errors))
	return report, nil
}

// ImportAccounts reads an accounts CSV (the inverse of the accounts
// export): columns name, account_type, classification, asset_type, plus
// optional currency, institution, account_number. Enum cells accept the
// raw code or the display label. An existing account of the same name has
// its attributes updated; otherwise the account is created.
func (s *Service) ImportAccounts(ctx context.Context, userID int64, r io.Reader) (ImportReport, error) {
	var report ImportReport

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return report, errors.New("empty file")
	}
	if err != nil {
		return report, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header,
		[]string{"name", "account_type", "classification", "asset_type"},
		[]string{"currency", "institution", "account_number"})
	if err != nil {
		return report, err
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.rowError(line, "unreadable: %v", err)
			continue
		}

		name := strings.TrimSpace(field(row, cols["name"]))
		if name == "" {
			report.rowError(line, "missing name")
			continue
		}
		accountType, ok := normalizeAccountType(field(row, cols["account_type"]))
		if !ok {
			report.rowError(line, "unknown account type %q", field(row, cols["account_type"]))
			continue
		}
		classification, ok := normalizeClassification(field(row, cols["classification"]))
		if !ok {
			report.rowError(line, "unknown classification %q", field(row, cols["classification"]))
			continue
		}
		assetType, ok := normalizeAssetType(field(row, cols["asset_type"]))
		if !ok {
			report.rowError(line, "unknown asset type %q", field(row, cols["asset_type"]))
			continue
		}

		currency := strings.ToUpper(strings.TrimSpace(field(row, cols["currency"])))
		if currency == "" {
			currency = "USD"
		}

		account := core.Account{
			UserID:         userID,
			Name:           name,
			Type:           accountType,
			Classification: classification,
			AssetType:      assetType,
			Currency:       currency,
			Institution:    strings.TrimSpace(field(row, cols["institution"])),
			AccountNumber:  strings.TrimSpace(field(row, cols["account_number"])),
			Active:         true,
		}
		if err := account.Validate(); err != nil {
			report.rowError(line, "%v", err)
			continue
		}

		existing, err := s.repo.GetAccountByName(ctx, userID, name)
		switch {
		case err == nil:
			account.ID = existing.ID
			if err := s.repo.UpdateAccount(ctx, account); err != nil {
				report.rowError(line, "update failed: %v", err)
				continue
			}
		case errors.Is(err, core.ErrNotFound):
			if _, err := s.repo.CreateAccount(ctx, account); err != nil {
				report.rowError(line, "create failed: %v", err)
				continue
			}
		default:
			return report, fmt.Errorf("look up account %q: %w", name, err)
		}
		report.Imported++
	}

	s.logger.InfoContext(ctx, "accounts import finished",
		log.FieldUserID, userID,
		log.FieldRows, report.Imported,
		"row_errors", len(report.Errors))
	return report, nil
}

// headerAliases maps the display headers the exporters write to the
// column names the importers key on, so a file exported here re-imports
// without hand-editing the header row.
var headerAliases = map[string]string{
	"account": "account_name",
	"type":    "account_type",
}

// indexColumns maps normalized header names (lowercased, spaces folded to
// underscores, display aliases resolved) to their positions, requiring the
// required set to be present. Optional columns missing from the header map
// to -1 so field() returns "".
func indexColumns(header []string, required, optional []string) (map[string]int, error) {
	idx := make(map[string]int, len(required)+len(optional))
	for _, name := range append(append([]string{}, required...), optional...) {
		idx[name] = -1
	}
	for i, h := range header {
		h = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if alias, ok := headerAliases[h]; ok {
			h = alias
		}
		if _, ok := idx[h]; ok {
			idx[h] = i
		}
	}
	var missing []string
	for _, name := range required {
		if idx[name] == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func normalizeAccountType(s string) (core.AccountType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range core.AccountTypes {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t, true
		}
	}
	return "", false
}

func normalizeClassification(s string) (core.Classification, bool) {
	s = strings.TrimSpace(s)
	for _, c := range core.Classifications {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Label()) {
			return c, true
		}
	}
	return "", false
}

func normalizeAssetType(s string) (core.AssetType, bool) {
	s = strings.TrimSpace(s)
	for _, a := range core.AssetTypes {
		if strings.EqualFold(s, string(a)) || strings.EqualFold(s, a.Label()) {
			return a, true
		}
	}
	return "", false
}
