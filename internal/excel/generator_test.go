package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/gigpay/internal/model"
)

func sampleStatement() model.ContractStatement {
	at := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	milestone := uint64(1)
	resolution := model.ResolutionFreelancer
	return model.ContractStatement{
		Contract: model.Contract{
			ID:             3,
			Client:         "client-1",
			Freelancer:     "freelancer-1",
			Title:          "Mobile app",
			TotalAmount:    1_000,
			EscrowedAmount: 0,
			Status:         model.ContractStatusCompleted,
		},
		Milestones: []model.Milestone{
			{ContractID: 3, MilestoneID: 1, Description: "MVP", Amount: 1_000, Status: model.MilestoneStatusApproved, ApprovedAt: &at},
		},
		Ledger: []model.LedgerEntry{
			{Seq: 1, ContractID: 3, Kind: model.LedgerEntryDeposit, From: "client-1", To: "vault", Amount: 1_000, CreatedAt: at},
			{Seq: 2, ContractID: 3, MilestoneID: &milestone, Kind: model.LedgerEntryPayout, From: "vault", To: "freelancer-1", Amount: 975, CreatedAt: at},
			{Seq: 3, ContractID: 3, MilestoneID: &milestone, Kind: model.LedgerEntryFee, From: "vault", To: "owner", Amount: 25, CreatedAt: at},
		},
		Dispute:     &model.Dispute{ContractID: 3, Status: model.DisputeStatusResolved, Resolution: &resolution},
		Rating:      &model.Rating{ContractID: 3, Score: 5},
		FeeRate:     250,
		GeneratedAt: at,
	}
}

func TestGenerateWorkbook(t *testing.T) {
	content, err := NewGenerator().Generate(sampleStatement())
	require.NoError(t, err)
	require.NotEmpty(t, content)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	require.Equal(t, []string{summarySheet, milestoneSheet, ledgerSheet}, file.GetSheetList())

	title, err := file.GetCellValue(summarySheet, "B2")
	require.NoError(t, err)
	require.Equal(t, "Mobile app", title)

	disbursed, err := file.GetCellValue(summarySheet, "B9")
	require.NoError(t, err)
	require.Equal(t, "1000", disbursed)

	rows, err := file.GetRows(ledgerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, "payout", rows[2][2])
	require.Equal(t, "1", rows[2][3])
}
