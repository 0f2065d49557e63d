package main

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"ammCore/internal/quote"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	amountIn, err := parseDecimalFlag(cmd, "amount-in")
	if err != nil {
		return err
	}
	reserveIn, err := parseDecimalFlag(cmd, "reserve-in")
	if err != nil {
		return err
	}
	reserveOut, err := parseDecimalFlag(cmd, "reserve-out")
	if err != nil {
		return err
	}
	feeBps, _ := cmd.Flags().GetUint64("fee-bps")

	out, err := quote.AmountOut(amountIn, reserveIn, reserveOut, feeBps)
	if err != nil {
		return err
	}

	fmt.Println(out.Dec())
	return nil
}

func parseDecimalFlag(cmd *cobra.Command, name string) (*uint256.Int, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	value := new(uint256.Int)
	if err := value.SetFromDecimal(raw); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return value, nil
}
