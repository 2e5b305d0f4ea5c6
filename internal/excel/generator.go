package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/gigpay/internal/model"
)

const (
	summarySheet   = "Summary"
	milestoneSheet = "Milestones"
	ledgerSheet    = "Ledger"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(statement model.ContractStatement) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, statement)

	if _, err := file.NewSheet(milestoneSheet); err != nil {
		return nil, err
	}
	g.writeMilestones(file, statement.Milestones)

	if _, err := file.NewSheet(ledgerSheet); err != nil {
		return nil, err
	}
	g.writeLedger(file, statement.Ledger)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, statement model.ContractStatement) {
	contract := statement.Contract
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	var disbursed uint64
	for _, entry := range statement.Ledger {
		if entry.Kind.Outflow() {
			disbursed += entry.Amount
		}
	}

	rows := [][2]interface{}{
		{"Contract", contract.ID},
		{"Title", contract.Title},
		{"Client", contract.Client},
		{"Freelancer", contract.Freelancer},
		{"Status", string(contract.Status)},
		{"Deadline", contract.Deadline},
		{"Total amount", contract.TotalAmount},
		{"Escrowed amount", contract.EscrowedAmount},
		{"Disbursed", disbursed},
		{"Fee rate (bps)", statement.FeeRate},
		{"Generated at", formatDateTime(statement.GeneratedAt)},
	}
	if statement.Rating != nil {
		rows = append(rows, [2]interface{}{"Rating", statement.Rating.Score})
	}
	if statement.Dispute != nil && statement.Dispute.Resolution != nil {
		rows = append(rows, [2]interface{}{"Dispute resolved for", string(*statement.Dispute.Resolution)})
	}
	for i, row := range rows {
		set(fmt.Sprintf("A%d", i+1), row[0])
		set(fmt.Sprintf("B%d", i+1), row[1])
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 24)
	_ = file.SetColWidth(summarySheet, "B", "B", 48)
}

func (g *Generator) writeMilestones(file *excelize.File, milestones []model.Milestone) {
	headers := []string{"Milestone", "Description", "Amount", "Status", "Due", "Submitted", "Approved"}
	writeHeader(file, milestoneSheet, headers)
	for i, m := range milestones {
		row := i + 2
		values := []interface{}{
			m.MilestoneID,
			m.Description,
			m.Amount,
			string(m.Status),
			m.DueDate,
			formatOptionalTime(m.SubmittedAt),
			formatOptionalTime(m.ApprovedAt),
		}
		writeRow(file, milestoneSheet, row, values)
	}
	_ = file.SetColWidth(milestoneSheet, "B", "B", 48)
	_ = file.SetColWidth(milestoneSheet, "F", "G", 20)
}

func (g *Generator) writeLedger(file *excelize.File, entries []model.LedgerEntry) {
	headers := []string{"Seq", "Time", "Kind", "Milestone", "From", "To", "Amount"}
	writeHeader(file, ledgerSheet, headers)
	for i, entry := range entries {
		milestone := ""
		if entry.MilestoneID != nil {
			milestone = fmt.Sprintf("%d", *entry.MilestoneID)
		}
		writeRow(file, ledgerSheet, i+2, []interface{}{
			entry.Seq,
			formatDateTime(entry.CreatedAt),
			string(entry.Kind),
			milestone,
			entry.From,
			entry.To,
			entry.Amount,
		})
	}
	_ = file.SetColWidth(ledgerSheet, "B", "B", 20)
	_ = file.SetColWidth(ledgerSheet, "E", "F", 44)
}

func writeHeader(file *excelize.File, sheet string, headers []string) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(sheet, cell, header)
	}
}

func writeRow(file *excelize.File, sheet string, row int, values []interface{}) {
	for i, value := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = file.SetCellValue(sheet, cell, value)
	}
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDateTime(*t)
}
