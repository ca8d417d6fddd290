package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	engine_v1 "github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/risk"
	"github.com/rxtech-lab/argo-guard/internal/strategy"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/internal/version"
	"github.com/urfave/cli/v3"
)

var dateConfig = cli.TimestampConfig{
	Layouts: []string{"2006-01-02", time.RFC3339},
}

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "strategy",
			Usage:   "Registered strategy name (see `strategies`)",
			Value:   strategy.SMACrossoverInfo.Name,
			Aliases: []string{"S"},
		},
		&cli.StringFlag{
			Name:  "strategy-config",
			Usage: "Path to the strategy YAML configuration",
		},
		&cli.StringFlag{
			Name:  "timeframe",
			Usage: "Candle timeframe, e.g. 1m, 1h, 1d",
			Value: string(types.Timeframe1d),
		},
		&cli.TimestampFlag{
			Name:   "start",
			Usage:  "Start date in `YYYY-MM-DD` format (or RFC3339), defaults to the engine config start_time",
			Config: dateConfig,
		},
		&cli.TimestampFlag{
			Name:   "end",
			Usage:  "End date in `YYYY-MM-DD` format (or RFC3339), defaults to the engine config end_time",
			Config: dateConfig,
		},
		&cli.FloatFlag{
			Name:  "capital",
			Usage: "Initial capital",
			Value: 10000,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the YAML result to this file instead of stdout",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Hide the progress bar",
		},
	}
}

func walkForwardFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "train-days", Usage: "Calendar days of each train window", Value: 180},
		&cli.IntFlag{Name: "test-days", Usage: "Calendar days of each test window", Value: 30},
		&cli.IntFlag{Name: "step-days", Usage: "Calendar days between window starts", Value: 30},
	}
}

func orderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "symbol", Usage: "Order symbol", Required: true},
		&cli.StringFlag{Name: "action", Usage: "BUY, SELL or CLOSE", Value: string(types.ActionBuy)},
		&cli.FloatFlag{Name: "quantity", Usage: "Order quantity", Required: true},
		&cli.FloatFlag{Name: "price", Usage: "Order price", Required: true},
	}
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	var (
		schema string
		err    error
	)

	switch kind := cmd.Args().First(); kind {
	case "", "engine":
		schema, err = engine_v1.NewBacktestEngineV1(logger.NewNopLogger()).GetConfigSchema()
	case "risk":
		schema, err = risk.DefaultConfig().GenerateSchemaJSON()
	default:
		schema, err = strategy.NewDefaultRegistry().Schema(kind)
	}

	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func strategiesAction(_ context.Context, _ *cli.Command) error {
	return writeOutput("", strategy.NewDefaultRegistry().List())
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "argo-guard",
		Usage:   "Backtest strategies, validate them walk-forward and gate live orders",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the backtest engine YAML configuration",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Candle data: a .csv file or parquet file(s), globs accepted",
			},
			&cli.StringFlag{
				Name:  "base-timeframe",
				Usage: "Timeframe of the rows in the parquet data",
				Value: string(types.Timeframe1m),
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Results store: duckdb://<path> or postgres://... (empty discards results)",
			},
			&cli.StringSliceFlag{
				Name:  "kafka-brokers",
				Usage: "Kafka brokers for trade attribution (empty logs attributions instead)",
			},
			&cli.StringFlag{
				Name:  "kafka-topic",
				Usage: "Kafka topic for trade attribution",
				Value: "trade-attribution",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "backtest",
				Usage:  "Replay one symbol through a strategy",
				Flags:  append(rangeFlags(), &cli.StringFlag{Name: "symbol", Usage: "Symbol to backtest", Required: true}),
				Action: backtestAction,
			},
			{
				Name:   "walkforward",
				Usage:  "Validate a strategy on rolling train/test windows",
				Flags:  append(append(rangeFlags(), walkForwardFlags()...), &cli.StringFlag{Name: "symbol", Usage: "Symbol to validate", Required: true}),
				Action: walkForwardAction,
			},
			{
				Name:  "batch",
				Usage: "Run a strategy over many symbols concurrently",
				Flags: append(append(rangeFlags(), walkForwardFlags()...),
					&cli.StringSliceFlag{Name: "symbols", Usage: "Symbols to run", Required: true},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent jobs, 0 uses one per CPU", Value: 0},
					&cli.BoolFlag{Name: "walk-forward", Usage: "Run walk-forward validations instead of backtests"},
					&cli.StringFlag{Name: "export-dir", Usage: "Export the duckdb store to Parquet files in this directory"},
				),
				Action: batchAction,
			},
			{
				Name:  "risk",
				Usage: "Gate live orders against daily risk limits",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "risk-config", Usage: "Path to the risk YAML configuration"},
					&cli.StringFlag{Name: "stats-dir", Usage: "Directory of the daily stats files, overrides the config"},
				},
				Commands: []*cli.Command{
					{
						Name:  "check",
						Usage: "Decide whether an order may be sent; exits with 2 when rejected",
						Flags: append(orderFlags(),
							&cli.FloatFlag{Name: "balance", Usage: "Account balance", Required: true},
							&cli.FloatFlag{Name: "stop-loss", Usage: "Stop-loss price"},
							&cli.FloatFlag{Name: "take-profit", Usage: "Take-profit price"},
						),
						Action: riskCheckAction,
					},
					{
						Name:   "record",
						Usage:  "Record a realized trade in today's stats",
						Flags:  append(orderFlags(), &cli.FloatFlag{Name: "pnl", Usage: "Realized profit or loss"}),
						Action: riskRecordAction,
					},
					{
						Name:   "stats",
						Usage:  "Print today's stats",
						Action: riskStatsAction,
					},
					{
						Name:   "reset",
						Usage:  "Clear today's stats",
						Action: riskResetAction,
					},
				},
			},
			{
				Name:      "schema",
				Usage:     "Print the JSON schema of a configuration",
				ArgsUsage: "[engine|risk|<strategy>]",
				Action:    schemaAction,
			},
			{
				Name:   "strategies",
				Usage:  "List the registered strategies",
				Action: strategiesAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
