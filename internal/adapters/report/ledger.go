package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/bicitaller/internal/domain"
)

const dayLayout = "2006-01-02"

// FileName arma el nombre de descarga del libro: caja_<desde>_<hasta>.<ext>.
// Hasta es inclusivo, por eso se resta un día al fin del rango.
func FileName(l *domain.Ledger, ext string) string {
	to := l.To.AddDate(0, 0, -1)
	if to.Before(l.From) {
		to = l.From
	}
	return fmt.Sprintf("caja_%s_%s.%s", l.From.Format(dayLayout), to.Format(dayLayout), ext)
}

// WriteCSV vuelca los movimientos, uno por renglón, ingresos antes que egresos.
// Las descripciones van tal cual; encoding/csv las entrecomilla si hace falta.
func WriteCSV(w io.Writer, l *domain.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "kind", "description", "amount", "order_id", "source_id"}); err != nil {
		return err
	}
	for _, e := range entries(l) {
		rec := []string{
			e.Date.Format(time.RFC3339),
			string(e.Kind),
			e.Description,
			e.Amount.StringFixed(2),
			e.OrderID.String(),
			e.SourceID.String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func entries(l *domain.Ledger) []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, 0, len(l.Income)+len(l.Expenses))
	out = append(out, l.Income...)
	return append(out, l.Expenses...)
}

// XLSX arma un libro con dos hojas: Movimientos (detalle) y Resumen (por día
// con los totales del período al pie).
func XLSX(l *domain.Ledger) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const detail, summary = "Movimientos", "Resumen"
	if err := f.SetSheetName("Sheet1", detail); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}

	head := []any{"Fecha", "Tipo", "Descripción", "Monto", "Orden"}
	if err := f.SetSheetRow(detail, "A1", &head); err != nil {
		return nil, err
	}
	row := 2
	for _, e := range entries(l) {
		amount, _ := e.Amount.Float64()
		if e.Kind == domain.EntryExpense {
			amount = -amount
		}
		vals := []any{e.Date.Format("2006-01-02 15:04"), kindLabel(e.Kind), e.Description, amount, e.OrderID.String()}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(detail, cell, &vals); err != nil {
			return nil, err
		}
		row++
	}

	head = []any{"Día", "Ingresos", "Egresos", "Neto"}
	if err := f.SetSheetRow(summary, "A1", &head); err != nil {
		return nil, err
	}
	row = 2
	for _, d := range l.Days {
		in, _ := d.Income.Float64()
		out, _ := d.Expenses.Float64()
		net, _ := d.Net.Float64()
		vals := []any{d.Day, in, out, net}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(summary, cell, &vals); err != nil {
			return nil, err
		}
		row++
	}
	in, _ := l.TotalIncome.Float64()
	out, _ := l.TotalExpenses.Float64()
	net, _ := l.NetMargin.Float64()
	totals := []any{"Total", in, out, net}
	cell, _ := excelize.CoordinatesToCellName(1, row+1)
	if err := f.SetSheetRow(summary, cell, &totals); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func kindLabel(k domain.EntryKind) string {
	if k == domain.EntryExpense {
		return "Egreso"
	}
	return "Ingreso"
}
