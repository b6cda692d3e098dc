package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alhaja/alhaja-admin/internal/gateway"
)

const csvBufferSize = 32 * 1024

// ordersCSVHeader is the fixed column set of the orders export. Total
// is deliberately the next-to-last column.
var ordersCSVHeader = []string{"Nº Pedido", "Fecha", "Cliente", "Teléfono", "Estado", "Artículos", "Total", "Notas"}

// csvWriter emits semicolon-delimited rows with every field quoted,
// the layout the shop's spreadsheet tooling expects. encoding/csv only
// quotes on demand, so quoting is done here.
type csvWriter struct {
	buf *bufio.Writer
}

func newCSVWriter(w io.Writer) *csvWriter {
	return &csvWriter{buf: bufio.NewWriterSize(w, csvBufferSize)}
}

func (w *csvWriter) writeBOM() error {
	_, err := w.buf.WriteString("\xEF\xBB\xBF")
	return err
}

func (w *csvWriter) writeRow(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.buf.WriteByte(';'); err != nil {
				return err
			}
		}
		if _, err := w.buf.WriteString(quoteField(field)); err != nil {
			return err
		}
	}
	_, err := w.buf.WriteString("\r\n")
	return err
}

func (w *csvWriter) flush() error {
	return w.buf.Flush()
}

func quoteField(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// WriteOrdersCSV streams the orders listing as UTF-8 CSV with a byte
// order mark. Every order's total is recomputed from its captured unit
// prices, never from live catalog prices.
func WriteOrdersCSV(w io.Writer, orders []gateway.Order) error {
	writer := newCSVWriter(w)
	if err := writer.writeBOM(); err != nil {
		return err
	}
	if err := writer.writeRow(ordersCSVHeader); err != nil {
		return err
	}
	for _, order := range orders {
		customerName := ""
		customerPhone := ""
		if order.Customer != nil {
			customerName = order.Customer.Name
			customerPhone = order.Customer.Phone
		}
		row := []string{
			order.Number,
			order.CreatedAt.Format("02/01/2006"),
			customerName,
			customerPhone,
			order.Status.Label(),
			strconv.Itoa(len(order.Items)),
			formatAmount(order.Total()),
			order.Notes,
		}
		if err := writer.writeRow(row); err != nil {
			return err
		}
	}
	return writer.flush()
}

// OrdersCSVFilename returns the date-stamped download name.
func OrdersCSVFilename(now time.Time) string {
	return fmt.Sprintf("pedidos-%s.csv", now.Format("2006-01-02"))
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
