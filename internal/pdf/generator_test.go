package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nurpe/gigpay/internal/model"
)

func TestGenerateStatement(t *testing.T) {
	at := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	statement := model.ContractStatement{
		Contract: model.Contract{
			ID:          9,
			Client:      "client-1",
			Freelancer:  "freelancer-1",
			Title:       "Café rebrand",
			Description: strings.Repeat("long description ", 30),
			TotalAmount: 500,
			Status:      model.ContractStatusActive,
		},
		Milestones: []model.Milestone{{ContractID: 9, MilestoneID: 1, Description: "Logo", Amount: 200, Status: model.MilestoneStatusPending}},
		Ledger: []model.LedgerEntry{
			{Seq: 1, ContractID: 9, Kind: model.LedgerEntryDeposit, From: "client-1", To: "vault", Amount: 500, CreatedAt: at},
		},
		FeeRate:     250,
		GeneratedAt: at,
	}

	content, err := NewGenerator().Generate(statement)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestHelpers(t *testing.T) {
	require.Equal(t, "2.50%", formatBasisPoints(250))
	require.Equal(t, "-", safeValue("  "))
	require.Equal(t, "abc...", truncate("abcdefgh", 6))
	require.Equal(t, "abc", truncate("abc", 6))
	require.Equal(t, "-", formatDateTime(time.Time{}))
}
