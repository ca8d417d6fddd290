package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/risk"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/urfave/cli/v3"
)

func newRiskEngine(ctx context.Context, cmd *cli.Command) (*risk.RiskEngine, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}

	config := risk.DefaultConfig()

	if path := cmd.String("risk-config"); path != "" {
		config, err = risk.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if dir := cmd.String("stats-dir"); dir != "" {
		config.StatsDir = dir
	}

	return risk.NewRiskEngineFromConfig(ctx, config, log)
}

func parseAction(value string) (types.Action, error) {
	action := types.Action(strings.ToUpper(strings.TrimSpace(value)))

	switch action {
	case types.ActionBuy, types.ActionSell, types.ActionClose:
		return action, nil
	default:
		return "", fmt.Errorf("unknown action %q, expected BUY, SELL or CLOSE", value)
	}
}

// optionalFloat reads a float flag as None when it was not given.
func optionalFloat(cmd *cli.Command, name string) optional.Option[float64] {
	if !cmd.IsSet(name) {
		return optional.None[float64]()
	}

	return optional.Some(cmd.Float(name))
}

func riskCheckAction(ctx context.Context, cmd *cli.Command) error {
	engine, err := newRiskEngine(ctx, cmd)
	if err != nil {
		return err
	}

	action, err := parseAction(cmd.String("action"))
	if err != nil {
		return err
	}

	intent := types.OrderIntent{
		Symbol:     cmd.String("symbol"),
		Action:     action,
		Quantity:   cmd.Float("quantity"),
		Price:      cmd.Float("price"),
		StopLoss:   optionalFloat(cmd, "stop-loss"),
		TakeProfit: optionalFloat(cmd, "take-profit"),
	}

	decision := engine.ValidateOrder(ctx, intent, cmd.Float("balance"))

	if err := writeOutput("", decision); err != nil {
		return err
	}

	if !decision.Allowed {
		return cli.Exit("order rejected", 2)
	}

	return nil
}

func riskRecordAction(ctx context.Context, cmd *cli.Command) error {
	engine, err := newRiskEngine(ctx, cmd)
	if err != nil {
		return err
	}

	action, err := parseAction(cmd.String("action"))
	if err != nil {
		return err
	}

	engine.RecordTrade(ctx, types.RealizedTrade{
		Symbol:   cmd.String("symbol"),
		Action:   action,
		Quantity: cmd.Float("quantity"),
		Price:    cmd.Float("price"),
		PnL:      cmd.Float("pnl"),
	})

	return writeOutput("", engine.GetStats(ctx))
}

func riskStatsAction(ctx context.Context, cmd *cli.Command) error {
	engine, err := newRiskEngine(ctx, cmd)
	if err != nil {
		return err
	}

	return writeOutput("", engine.GetStats(ctx))
}

func riskResetAction(ctx context.Context, cmd *cli.Command) error {
	engine, err := newRiskEngine(ctx, cmd)
	if err != nil {
		return err
	}

	engine.Reset(ctx)

	return writeOutput("", engine.GetStats(ctx))
}
