// Package excel lectura y escritura de libros .xlsx con excelize.
package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/price-catalog/internal/application/cart"
)

// OrderSheet nombre de la hoja del pedido.
const OrderSheet = "Заказ"

var orderColWidths = []float64{20, 15, 50, 12, 12, 15, 15}

var _ cart.SpreadsheetWriter = (*OrderWriter)(nil)

// OrderWriter genera el libro del pedido exportado desde el carrito.
type OrderWriter struct{}

// NewOrderWriter construye el writer.
func NewOrderWriter() *OrderWriter { return &OrderWriter{} }

// WriteOrder escribe encabezados, una fila por línea y la fila ИТОГО:.
func (w *OrderWriter) WriteOrder(table cart.ExportTable) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), OrderSheet); err != nil {
		return nil, fmt.Errorf("renombrar hoja: %w", err)
	}

	header := make([]interface{}, len(cart.ExportHeaders))
	for i, h := range cart.ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(OrderSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}

	lines := make([]cart.ExportRow, 0, len(table.Rows)+1)
	lines = append(append(lines, table.Rows...), table.TotalRow())

	row := 2
	for _, r := range lines {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		values := []interface{}{r.Manufacturer, r.Article, r.Name, r.PriceRub, r.Quantity, r.SumRub, r.LeadTime}
		if err := f.SetSheetRow(OrderSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("fila %d: %w", row, err)
		}
		row++
	}

	if err := styleOrder(f, row-1); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escribir xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// styleOrder anchos de columna, encabezado y fila de totales en negrita.
func styleOrder(f *excelize.File, lastRow int) error {
	for i, width := range orderColWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(OrderSheet, col, col, width); err != nil {
			return fmt.Errorf("ancho columna %s: %w", col, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("estilo: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(orderColWidths))
	if err := f.SetCellStyle(OrderSheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	return f.SetCellStyle(OrderSheet, fmt.Sprintf("A%d", lastRow), fmt.Sprintf("%s%d", lastCol, lastRow), bold)
}
