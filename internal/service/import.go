package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jask/stockflow/internal/domain"
)

// ImportResult summarises an inventory import.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// ImportCSV adds products for owner from rows of: name, quantity, price.
// A leading header row is ignored. Names the owner already stocks are skipped.
func (s *CatalogService) ImportCSV(ctx context.Context, owner domain.Actor, r io.Reader) (ImportResult, error) {
	res := ImportResult{}
	if !owner.Role.Sells() {
		return res, domain.ErrUnauthorized
	}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if len(rec) < 3 {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected 3 columns (name, quantity, price)", line))
			continue
		}
		name, qtyStr, priceStr := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), strings.TrimSpace(rec[2])
		if line == 1 && strings.EqualFold(name, "name") {
			continue
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d quantity: %w", line, err))
			continue
		}
		price, err := decimal.NewFromString(strings.TrimPrefix(priceStr, "$"))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d price: %w", line, err))
			continue
		}
		if _, err := s.AddProduct(ctx, owner, name, qty, price); err != nil {
			if errors.Is(err, domain.ErrDuplicateProduct) {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}
