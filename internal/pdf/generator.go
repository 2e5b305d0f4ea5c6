package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/gigpay/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(statement model.ContractStatement) ([]byte, error) {
	contract := statement.Contract

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Contract statement #%d", contract.ID), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, "Generated "+formatDateTime(statement.GeneratedAt), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, g.fontName, "Contract")
	lines := []string{
		"Title: " + tr(contract.Title),
		"Description: " + safeValue(tr(contract.Description)),
		"Client: " + contract.Client,
		"Freelancer: " + contract.Freelancer,
		"Status: " + string(contract.Status),
		fmt.Sprintf("Deadline: %d", contract.Deadline),
		fmt.Sprintf("Total amount: %d", contract.TotalAmount),
		fmt.Sprintf("Escrowed amount: %d", contract.EscrowedAmount),
		fmt.Sprintf("Platform fee: %s", formatBasisPoints(statement.FeeRate)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(3)

	section(pdf, g.fontName, "Milestones")
	milestoneWidths := []float64{20, 90, 35, 35}
	drawTableRow(pdf, g.fontName, []string{"ID", "Description", "Amount", "Status"}, milestoneWidths, true)
	for _, m := range statement.Milestones {
		drawTableRow(pdf, g.fontName, []string{
			fmt.Sprintf("%d", m.MilestoneID),
			truncate(tr(m.Description), 50),
			fmt.Sprintf("%d", m.Amount),
			string(m.Status),
		}, milestoneWidths, false)
	}
	if len(statement.Milestones) == 0 {
		pdf.CellFormat(0, 6, "No milestones", "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	section(pdf, g.fontName, "Ledger")
	ledgerWidths := []float64{12, 22, 53, 53, 40}
	drawTableRow(pdf, g.fontName, []string{"#", "Kind", "From", "To", "Amount"}, ledgerWidths, true)
	var disbursed uint64
	for _, entry := range statement.Ledger {
		if entry.Kind.Outflow() {
			disbursed += entry.Amount
		}
		drawTableRow(pdf, g.fontName, []string{
			fmt.Sprintf("%d", entry.Seq),
			string(entry.Kind),
			truncate(entry.From, 28),
			truncate(entry.To, 28),
			fmt.Sprintf("%d", entry.Amount),
		}, ledgerWidths, false)
	}
	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Disbursed: %d, held in escrow: %d", disbursed, contract.EscrowedAmount), "", 1, "R", false, 0, "")

	if statement.Dispute != nil {
		pdf.Ln(3)
		section(pdf, g.fontName, "Dispute")
		dispute := statement.Dispute
		pdf.MultiCell(0, 5, "Raised by: "+dispute.RaisedBy, "", "L", false)
		pdf.MultiCell(0, 5, "Reason: "+safeValue(tr(dispute.Reason)), "", "L", false)
		pdf.MultiCell(0, 5, "Status: "+string(dispute.Status), "", "L", false)
		if dispute.Resolution != nil {
			pdf.MultiCell(0, 5, "Resolved for: "+string(*dispute.Resolution), "", "L", false)
		}
	}

	if statement.Rating != nil {
		pdf.Ln(3)
		section(pdf, g.fontName, "Rating")
		pdf.MultiCell(0, 5, fmt.Sprintf("Score: %d/5 by %s", statement.Rating.Score, statement.Rating.Rater), "", "L", false)
		pdf.MultiCell(0, 5, "Comment: "+safeValue(tr(statement.Rating.Comment)), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, fontName, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 || (!header && i == 0) {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

func formatBasisPoints(rate uint32) string {
	return fmt.Sprintf("%d.%02d%%", rate/100, rate%100)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
