// Package replay applies an ordered command log to an engine. Logs are YAML
// lists; each command names the operation, the caller and the arguments the
// operation needs.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/service"
)

const (
	OpCreateContract   = "create-contract"
	OpAddMilestone     = "add-milestone"
	OpSubmitMilestone  = "submit-milestone"
	OpApproveMilestone = "approve-milestone"
	OpCompleteContract = "complete-contract"
	OpCancelContract   = "cancel-contract"
	OpRaiseDispute     = "raise-dispute"
	OpResolveDispute   = "resolve-dispute"
	OpSubmitRating     = "submit-rating"
	OpSetPlatformFee   = "set-platform-fee"
	OpDepositFunds     = "deposit-funds"
)

// CodeUnknownOp is reported for commands naming an operation the driver does
// not know.
const CodeUnknownOp = "unknown_op"

type Command struct {
	Op          string `yaml:"op"`
	Caller      string `yaml:"caller"`
	ContractID  uint64 `yaml:"contract_id"`
	MilestoneID uint64 `yaml:"milestone_id"`
	Freelancer  string `yaml:"freelancer"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Amount      uint64 `yaml:"amount"`
	Deadline    uint64 `yaml:"deadline"`
	DueDate     uint64 `yaml:"due_date"`
	Score       int    `yaml:"score"`
	Comment     string `yaml:"comment"`
	FeeRate     uint32 `yaml:"fee_rate"`
	Resolution  string `yaml:"resolution"`
	Reason      string `yaml:"reason"`
	Account     string `yaml:"account"`
}

type Result struct {
	Index      int    `json:"index"`
	Op         string `json:"op"`
	OK         bool   `json:"ok"`
	Code       string `json:"code"`
	ContractID uint64 `json:"contract_id,omitempty"`
}

func Parse(r io.Reader) ([]Command, error) {
	var cmds []Command
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cmds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode command log: %w", err)
	}
	return cmds, nil
}

// Run applies the commands in order. A failing command is recorded and the
// driver moves on; it never stops early.
func Run(ctx context.Context, engine *service.Engine, cmds []Command) []Result {
	results := make([]Result, 0, len(cmds))
	for i, cmd := range cmds {
		contractID, err := apply(ctx, engine, cmd)
		res := Result{Index: i, Op: cmd.Op, OK: err == nil, Code: service.ErrorCode(err), ContractID: contractID}
		if errors.Is(err, errUnknownOp) {
			res.Code = CodeUnknownOp
		}
		results = append(results, res)
	}
	return results
}

var errUnknownOp = errors.New("unknown operation")

func apply(ctx context.Context, engine *service.Engine, cmd Command) (uint64, error) {
	caller := model.Principal{ID: cmd.Caller}
	switch cmd.Op {
	case OpCreateContract:
		id, err := engine.CreateContract(ctx, caller, service.CreateContractInput{
			Freelancer:  cmd.Freelancer,
			Title:       cmd.Title,
			Description: cmd.Description,
			TotalAmount: cmd.Amount,
			Deadline:    cmd.Deadline,
		})
		return id, err
	case OpAddMilestone:
		return cmd.ContractID, engine.AddMilestone(ctx, caller, cmd.ContractID, service.AddMilestoneInput{
			MilestoneID: cmd.MilestoneID,
			Description: cmd.Description,
			Amount:      cmd.Amount,
			DueDate:     cmd.DueDate,
		})
	case OpSubmitMilestone:
		return cmd.ContractID, engine.SubmitMilestone(ctx, caller, cmd.ContractID, cmd.MilestoneID)
	case OpApproveMilestone:
		return cmd.ContractID, engine.ApproveMilestone(ctx, caller, cmd.ContractID, cmd.MilestoneID)
	case OpCompleteContract:
		return cmd.ContractID, engine.CompleteContract(ctx, caller, cmd.ContractID)
	case OpCancelContract:
		return cmd.ContractID, engine.CancelContract(ctx, caller, cmd.ContractID)
	case OpRaiseDispute:
		return cmd.ContractID, engine.RaiseDispute(ctx, caller, cmd.ContractID, cmd.Reason)
	case OpResolveDispute:
		return cmd.ContractID, engine.ResolveDispute(ctx, caller, cmd.ContractID, cmd.Resolution)
	case OpSubmitRating:
		return cmd.ContractID, engine.SubmitRating(ctx, caller, cmd.ContractID, cmd.Score, cmd.Comment)
	case OpSetPlatformFee:
		return 0, engine.SetPlatformFee(ctx, caller, cmd.FeeRate)
	case OpDepositFunds:
		return 0, engine.DepositFunds(ctx, caller, cmd.Account, cmd.Amount)
	default:
		return 0, errUnknownOp
	}
}

// LogicalClock returns a clock that starts at start and advances one second
// per reading, so replayed timestamps do not depend on wall time.
func LogicalClock(start time.Time) func() time.Time {
	var (
		mu   sync.Mutex
		tick int64
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := start.Add(time.Duration(tick) * time.Second)
		tick++
		return t
	}
}
