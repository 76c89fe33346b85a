package service

import (
	"bytes"
	"context"
	"html/template"
	"math"
	"strconv"

	"github.com/Reainz/restaurant-system/internal/model"
)

// receiptTemplate renders a bill as a printable HTML receipt. Amounts
// are whole dong with thousands separators.
var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": formatAmount,
	"lineTotal": func(item model.BillItem) float64 {
		return item.Price * float64(item.Quantity)
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Bill Receipt - {{.BillID}}</title>
    <style>
        body { font-family: sans-serif; margin: 20px; }
        h1 { text-align: center; color: #333; }
        .header-info { margin-bottom: 20px; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        th { border-bottom: 1px solid #ccc; padding: 8px; text-align: left; background-color: #f8f8f8; }
        td { border-bottom: 1px solid #eee; padding: 8px; }
        .text-right { text-align: right; }
        .totals { margin-top: 20px; padding-top: 10px; border-top: 1px solid #ccc; }
        .totals .text-right { text-align: right; font-weight: bold; }
        footer { text-align: center; margin-top: 30px; font-size: 0.9em; color: #777; }
    </style>
</head>
<body>
    <h1>Manwah Restaurant</h1>
    <div class="header-info">
        <strong>Bill ID:</strong> {{.BillID}}<br>
        <strong>Table ID:</strong> {{.TableID}}<br>
        <strong>Order ID:</strong> {{.OrderID}}<br>
        <strong>Date:</strong> {{.CreatedAt.Format "2006-01-02 15:04:05"}}<br>
        <strong>Payment Status:</strong> {{.PaymentStatus}}
    </div>

    <h2>Order Details</h2>
    <table>
        <thead>
            <tr>
                <th>Item Name</th>
                <th>Quantity</th>
                <th class="text-right">Unit Price (₫)</th>
                <th class="text-right">Total Price (₫)</th>
            </tr>
        </thead>
        <tbody>
{{- range .Items}}
            <tr>
                <td>{{.Name}}</td>
                <td>{{.Quantity}}</td>
                <td class="text-right">{{money .Price}}</td>
                <td class="text-right">{{money (lineTotal .)}}</td>
            </tr>
{{- end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr><td>Subtotal</td><td class="text-right">{{money .Total}} ₫</td></tr>
            <tr><td><strong>Total</strong></td><td class="text-right"><strong>{{money .TotalAmount}} ₫</strong></td></tr>
        </table>
    </div>

    <footer>Thank you for dining with us!</footer>
</body>
</html>`))

// ReceiptHTML renders the printable receipt for one bill.
func (s *BillService) ReceiptHTML(ctx context.Context, billID string) (string, error) {
	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, bill); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatAmount renders a whole-dong amount with thousands separators,
// e.g. 100000 -> "100,000".
func formatAmount(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var buf bytes.Buffer
	if neg {
		buf.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		buf.WriteString(digits[:lead])
		if len(digits) > lead {
			buf.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		buf.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			buf.WriteByte(',')
		}
	}
	return buf.String()
}
