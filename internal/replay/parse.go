package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"ammCore/internal/model"
)

// knownOps lists the accepted journal operation names.
var knownOps = map[string]struct{}{
	model.OpBind:     {},
	model.OpFund:     {},
	model.OpTransfer: {},
	model.OpDeposit:  {},
	model.OpWithdraw: {},
	model.OpSwap:     {},
	model.OpSync:     {},
}

// ReadOps parses a JSONL operation journal. Blank lines are skipped;
// a malformed line or unknown operation aborts the parse.
func ReadOps(r io.Reader) ([]model.OpRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var ops []model.OpRecord
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var op model.OpRecord
		if err := json.Unmarshal([]byte(text), &op); err != nil {
			return nil, fmt.Errorf("parse journal line %d: %w", line, err)
		}
		if _, ok := knownOps[op.Op]; !ok {
			return nil, fmt.Errorf("journal line %d: unknown op %q", line, op.Op)
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return ops, nil
}

// parseAddress validates and converts a hex address.
func parseAddress(input string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// parseAmount converts a decimal amount string; empty means zero.
func parseAmount(input string) (*uint256.Int, error) {
	amount := new(uint256.Int)
	if input == "" {
		return amount, nil
	}
	if err := amount.SetFromDecimal(input); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", input, err)
	}
	return amount, nil
}
