package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
)

const maxImportBytes = 5 << 20

// ImportResult reports a CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import creates one equipment record per CSV row. Columns are matched by header
// name (nom, reference, etat, date_derniere_vgp, image_url); the separator is "," or
// ";". Rows without a name are skipped (every row, when the header has no nom
// column) and a blank etat defaults to Bon. All rows are inserted in one transaction.
// Payloads over maxImportBytes are rejected with file_too_large.
func (s *MaterielService) Import(ctx context.Context, companyID uint, r io.Reader) (ImportResult, error) {
	var res ImportResult
	data, err := io.ReadAll(io.LimitReader(r, maxImportBytes+1))
	if err != nil {
		return res, apperr.E(apperr.BadRequest, "csv_invalid", err)
	}
	if len(data) > maxImportBytes {
		return res, apperr.E(apperr.BadRequest, "file_too_large", nil)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = separator(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return res, apperr.E(apperr.BadRequest, "csv_invalid", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var items []models.Materiel
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportResult{}, apperr.E(apperr.BadRequest, "csv_invalid", err)
		}
		nom := field(row, "nom")
		if nom == "" {
			res.Skipped++
			continue
		}
		etat := field(row, "etat")
		if etat == "" {
			etat = models.DefaultEtat
		}
		items = append(items, models.Materiel{
			CompanyID:       companyID,
			Nom:             nom,
			Reference:       field(row, "reference"),
			Etat:            etat,
			DateDerniereVGP: models.ParseLenientDate(field(row, "date_derniere_vgp")),
			ImageURL:        field(row, "image_url"),
		})
	}
	if len(items) > 0 {
		if err := s.db.WithContext(ctx).CreateInBatches(items, 100).Error; err != nil {
			return ImportResult{}, err
		}
	}
	res.Imported = len(items)
	return res, nil
}

// separator picks ";" when the header line has more semicolons than commas.
func separator(data []byte) rune {
	line, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
