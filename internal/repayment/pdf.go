package repayment

import (
	_ "embed"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	fontFamily = "DejaVu"
)

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

var (
	summaryWidths   = []float64{62, 62, 62}
	breakdownWidths = []float64{48, 28, 26, 18, 24, 22, 20}
	breakdownHeader = []string{"DEBT", "TYPE", "BALANCE", "RATE %", "MINIMUM", "INTEREST", "MONTHS"}
)

// WritePDF выводит сводку плана погашения в PDF-документ.
func WritePDF(w io.Writer, summary Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 14, 12)
	// UTF-8 шрифт: названия долгов могут быть на кириллице.
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont(fontFamily, "B", 18)
	pdf.Cell(0, 10, "Repayment plan")
	pdf.Ln(9)

	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s (%d days)",
		summary.ProjectionStart.UTC().Format(dateLayout),
		summary.ProjectionEnd.UTC().Format(dateLayout),
		summary.ProjectionDays,
	))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Active debts: %d, payoff estimate: %s", summary.TotalDebts, summary.PayoffEstimate))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)

	summaryRow(pdf, true, "Total balance", "Paid so far", "Future payments")
	summaryRow(pdf, false, money(summary.TotalBalance), money(summary.PastPayments), money(summary.ProjectedFuturePayments))
	pdf.Ln(2)
	summaryRow(pdf, true, "Projected interest", "Balance after", "Payoff")
	summaryRow(pdf, false, money(summary.ProjectedInterest), money(summary.ProjectedBalanceAfter), summary.PayoffEstimate)
	pdf.Ln(6)

	breakdownHeaderRow(pdf)
	pdf.SetFont(fontFamily, "", 9)
	pdf.SetTextColor(30, 30, 30)

	for _, debt := range summary.Debts {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			breakdownHeaderRow(pdf)
			pdf.SetFont(fontFamily, "", 9)
		}

		cells := []string{
			trimTo(debt.Name, 28),
			string(debt.Type),
			money(debt.Balance),
			debt.InterestRate.StringFixed(2),
			money(debt.MinimumPayment),
			money(debt.Interest),
			fmt.Sprintf("%d", debt.PayoffMonths),
		}
		for i, value := range cells {
			align := "R"
			if i < 2 {
				align = "L"
			}
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			pdf.CellFormat(breakdownWidths[i], 8, value, "1", ln, align, false, 0, "")
		}
	}

	if len(summary.Debts) == 0 {
		pdf.SetFont(fontFamily, "", 9)
		pdf.CellFormat(0, 8, "No active debts match the filter", "1", 1, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func summaryRow(pdf *gofpdf.Fpdf, header bool, values ...string) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontFamily, style, 11)
	for i, value := range values {
		ln := 0
		if i == len(values)-1 {
			ln = 1
		}
		pdf.CellFormat(summaryWidths[i], 9, value, "1", ln, "C", header, 0, "")
	}
}

func breakdownHeaderRow(pdf *gofpdf.Fpdf) {
	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetFillColor(245, 245, 245)
	for i, title := range breakdownHeader {
		ln := 0
		if i == len(breakdownHeader)-1 {
			ln = 1
		}
		pdf.CellFormat(breakdownWidths[i], 8, title, "1", ln, "C", true, 0, "")
	}
}

func money(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func trimTo(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit-3]) + "..."
}
