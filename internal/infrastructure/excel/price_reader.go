package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/price-catalog/internal/application/pricelist"
	"github.com/jhoicas/price-catalog/internal/domain"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
)

// Hojas del libro de importación.
const (
	SheetProducts = "Products"
	SheetStock    = "Stock"
	SheetMargins  = "Margins"
	SheetSettings = "Settings"
)

var _ pricelist.PriceListReader = (*PriceListReader)(nil)

// PriceListReader lee el libro de precios. Solo Products es obligatoria; las columnas se
// localizan por el nombre del encabezado (sin distinguir mayúsculas).
type PriceListReader struct{}

// NewPriceListReader construye el lector.
func NewPriceListReader() *PriceListReader { return &PriceListReader{} }

// Read parsea el libro completo.
func (p *PriceListReader) Read(r io.Reader) (*pricelist.PriceList, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPriceList, err)
	}
	defer func() { _ = f.Close() }()

	list := &pricelist.PriceList{
		Stock:               map[string]entity.Stock{},
		ArticleMargins:      map[string]decimal.Decimal{},
		ManufacturerMargins: map[string]decimal.Decimal{},
	}

	if err := readProducts(f, list); err != nil {
		return nil, err
	}
	if err := readStock(f, list); err != nil {
		return nil, err
	}
	if err := readMargins(f, list); err != nil {
		return nil, err
	}
	if err := readSettings(f, list); err != nil {
		return nil, err
	}
	return list, nil
}

func readProducts(f *excelize.File, list *pricelist.PriceList) error {
	rows, cols, err := sheetRows(f, SheetProducts, true, "manufacturer", "article", "name", "dealer_price_kzt")
	if err != nil {
		return err
	}
	for i, row := range rows {
		price, _ := parseDecimal(cell(row, cols, "dealer_price_kzt"))
		list.Products = append(list.Products, pricelist.PriceRow{
			Line:           i + 2,
			Manufacturer:   cell(row, cols, "manufacturer"),
			Article:        cell(row, cols, "article"),
			Name:           cell(row, cols, "name"),
			DealerPriceKZT: price,
			FixedLeadTime:  cell(row, cols, "fixed_lead_time"),
			CatalogURL:     cell(row, cols, "catalog_url"),
			ImageURL:       cell(row, cols, "image_url"),
		})
	}
	return nil
}

func readStock(f *excelize.File, list *pricelist.PriceList) error {
	rows, cols, err := sheetRows(f, SheetStock, false, "article")
	if err != nil || rows == nil {
		return err
	}
	for _, row := range rows {
		article := entity.NormalizeArticle(cell(row, cols, "article"))
		if article == "" {
			continue
		}
		st := list.Stock[article]
		st.Astana += parseQty(cell(row, cols, "astana"))
		st.Almaty += parseQty(cell(row, cols, "almaty"))
		list.Stock[article] = st
	}
	return nil
}

func readMargins(f *excelize.File, list *pricelist.PriceList) error {
	rows, cols, err := sheetRows(f, SheetMargins, false, "scope", "key", "margin")
	if err != nil || rows == nil {
		return err
	}
	for i, row := range rows {
		key := cell(row, cols, "key")
		raw := cell(row, cols, "margin")
		if key == "" || raw == "" {
			continue
		}
		m, err := parseDecimal(raw)
		if err != nil {
			return fmt.Errorf("%w: %s fila %d: margen %q", domain.ErrInvalidPriceList, SheetMargins, i+2, raw)
		}
		switch strings.ToLower(cell(row, cols, "scope")) {
		case "article":
			list.ArticleMargins[entity.NormalizeArticle(key)] = m
		case "manufacturer":
			list.ManufacturerMargins[key] = m
		default:
			return fmt.Errorf("%w: %s fila %d: scope debe ser article o manufacturer", domain.ErrInvalidPriceList, SheetMargins, i+2)
		}
	}
	return nil
}

func readSettings(f *excelize.File, list *pricelist.PriceList) error {
	rows, cols, err := sheetRows(f, SheetSettings, false, "parameter", "value")
	if err != nil || rows == nil {
		return err
	}
	for _, row := range rows {
		raw := cell(row, cols, "value")
		switch strings.ToLower(cell(row, cols, "parameter")) {
		case "kurs":
			d, err := parseDecimal(raw)
			if err != nil {
				return fmt.Errorf("%w: kurs %q", domain.ErrInvalidPriceList, raw)
			}
			list.Kurs = &d
		case "global_margin":
			d, err := parseDecimal(raw)
			if err != nil {
				return fmt.Errorf("%w: global_margin %q", domain.ErrInvalidPriceList, raw)
			}
			list.GlobalMargin = &d
		}
	}
	return nil
}

// sheetRows devuelve las filas de datos (sin encabezado) y el índice de columnas por nombre.
// Hoja ausente: error si required, si no nil sin error.
func sheetRows(f *excelize.File, sheet string, required bool, mustHave ...string) ([][]string, map[string]int, error) {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if required {
			return nil, nil, fmt.Errorf("%w: falta la hoja %s", domain.ErrInvalidPriceList, sheet)
		}
		return nil, nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("leer hoja %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		if required {
			return nil, nil, fmt.Errorf("%w: hoja %s vacía", domain.ErrInvalidPriceList, sheet)
		}
		return nil, nil, nil
	}
	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range mustHave {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("%w: hoja %s sin columna %s", domain.ErrInvalidPriceList, sheet, name)
		}
	}
	return rows[1:], cols, nil
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseDecimal acepta separador de miles con espacio y coma decimal ("6 000,50").
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, fmt.Errorf("vacío")
	}
	return decimal.NewFromString(s)
}

// parseQty stock entero; vacío, inválido o negativo cuenta como 0.
func parseQty(s string) int {
	d, err := parseDecimal(s)
	if err != nil || d.IsNegative() {
		return 0
	}
	n, err := strconv.Atoi(d.Truncate(0).String())
	if err != nil {
		return 0
	}
	return n
}
