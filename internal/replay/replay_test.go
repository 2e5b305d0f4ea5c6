package replay

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/gigpay/internal/db"
	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/repository"
	"github.com/nurpe/gigpay/internal/service"
)

const scenario = `
- op: deposit-funds
  caller: owner
  account: client
  amount: 1000000
- op: create-contract
  caller: client
  freelancer: freelancer
  title: Website redesign
  amount: 1000000
  deadline: 1735689600
- op: add-milestone
  caller: client
  contract_id: 1
  milestone_id: 1
  description: Wireframes
  amount: 500000
- op: submit-milestone
  caller: freelancer
  contract_id: 1
  milestone_id: 1
- op: approve-milestone
  caller: client
  contract_id: 1
  milestone_id: 1
- op: approve-milestone
  caller: client
  contract_id: 1
  milestone_id: 1
- op: set-platform-fee
  caller: owner
  fee_rate: 1500
- op: complete-contract
  caller: client
  contract_id: 1
- op: submit-rating
  caller: client
  contract_id: 1
  score: 6
- op: submit-rating
  caller: client
  contract_id: 1
  score: 5
- op: submit-rating
  caller: freelancer
  contract_id: 1
  score: 4
- op: teleport
  caller: client
`

func newEngine(t *testing.T) *service.Engine {
	t.Helper()
	database, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	engine, err := service.NewEngine(context.Background(), repository.NewStore(database), zerolog.Nop(), service.EngineOptions{
		Owner:       "owner",
		EscrowVault: "vault",
		FeeRate:     service.DefaultFeeRate,
		Now:         LogicalClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	return engine
}

func TestParse(t *testing.T) {
	cmds, err := Parse(strings.NewReader(scenario))
	require.NoError(t, err)
	require.Len(t, cmds, 12)
	require.Equal(t, OpCreateContract, cmds[1].Op)
	require.Equal(t, uint64(1_000_000), cmds[1].Amount)
	require.Equal(t, "Website redesign", cmds[1].Title)

	cmds, err = Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, cmds)

	_, err = Parse(strings.NewReader("- op: create-contract\n  colour: blue\n"))
	require.Error(t, err)
}

func TestRunReportsEveryCommand(t *testing.T) {
	cmds, err := Parse(strings.NewReader(scenario))
	require.NoError(t, err)

	results := Run(context.Background(), newEngine(t), cmds)
	require.Len(t, results, len(cmds))

	codes := make([]string, len(results))
	for i, res := range results {
		require.Equal(t, i, res.Index)
		require.Equal(t, res.Code == "ok", res.OK)
		codes[i] = res.Code
	}
	require.Equal(t, []string{
		"ok",
		"ok",
		"ok",
		"ok",
		"ok",
		"invalid_status",
		"fee_exceeds_maximum",
		"ok",
		"invalid_rating",
		"ok",
		"duplicate_rating",
		CodeUnknownOp,
	}, codes)
	require.Equal(t, uint64(1), results[1].ContractID)
}

func TestRunIsDeterministic(t *testing.T) {
	cmds, err := Parse(strings.NewReader(scenario))
	require.NoError(t, err)
	ctx := context.Background()

	snapshot := func() ([]Result, *model.Contract, []model.LedgerEntry) {
		engine := newEngine(t)
		results := Run(ctx, engine, cmds)
		contract, err := engine.GetContract(ctx, 1)
		require.NoError(t, err)
		ledger, err := engine.ListLedger(ctx, 1)
		require.NoError(t, err)
		for i := range ledger {
			ledger[i].ID = uuid.Nil
		}
		return results, contract, ledger
	}

	r1, c1, l1 := snapshot()
	r2, c2, l2 := snapshot()
	require.Equal(t, r1, r2)
	require.Equal(t, c1, c2)
	require.Equal(t, l1, l2)
	require.Equal(t, model.ContractStatusCompleted, c1.Status)
	require.Equal(t, uint64(0), c1.EscrowedAmount)
}

func TestLogicalClockAdvances(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := LogicalClock(start)
	require.Equal(t, start, clock())
	require.Equal(t, start.Add(time.Second), clock())
}
