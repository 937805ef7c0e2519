// Command evalkernel is a thin CLI around the evaluation kernel: point it
// at an engine DSN and a candidate query, and it prints the resulting
// MultiDimensionalScore as JSON. It exists for manual inspection and
// scripting against a single query at a time; a harness driving many tasks
// at once should import internal/kernel directly instead.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/queryeval/kernel/internal/comparator"
	"github.com/queryeval/kernel/internal/config"
	"github.com/queryeval/kernel/internal/kernel"
	"github.com/queryeval/kernel/pkg/database"
	"github.com/queryeval/kernel/pkg/logger"
)

func main() {
	dialectFlag := flag.String("dialect", "", "dialect to evaluate against (sqlite, postgresql, duckdb, bigquery, snowflake, mysql)")
	sqlFlag := flag.String("sql", "", "candidate SQL query to evaluate")
	dsnFlag := flag.String("dsn", "", "override DSN for the chosen dialect (defaults to engines.dsns.<dialect> from config)")
	expectedFlag := flag.String("expected", "", "path to a JSON file holding the expected result set ({\"columns\": [...], \"rows\": [...]})")
	planFlag := flag.String("plan", "", "path to a file holding the engine's EXPLAIN output for plan-quality scoring")
	weightsPreset := flag.String("weights", "", "weights preset: default, strict, performance, quality")
	flag.Parse()

	if *dialectFlag == "" || *sqlFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: evalkernel -dialect <name> -sql <query> [-dsn ...] [-expected file.json] [-plan file.txt] [-weights preset]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.WithComponent(appLogger, "evalkernel")

	dsn := *dsnFlag
	if dsn == "" {
		if configured, ok := cfg.DSN(*dialectFlag); ok {
			dsn = configured
		}
	}
	if dsn == "" {
		log.Fatal("no DSN configured for dialect; pass -dsn or set engines.dsns." + *dialectFlag)
	}

	adapter, err := database.NewAdapter(database.Config{
		Dialect:         *dialectFlag,
		DSN:             dsn,
		MaxOpenConns:    cfg.Engines.MaxConnections,
		MaxIdleConns:    cfg.Engines.MaxIdleConns,
		ConnMaxIdleTime: cfg.Engines.IdleTimeout,
		ConnMaxLifetime: cfg.Engines.ConnectionLifetime,
		ConnectTimeout:  cfg.Engines.ConnectionTimeout,
	}, nil)
	if err != nil {
		log.WithError(err).Fatal("building adapter")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Execution.IntrospectionTimeout)
	defer cancel()

	if err := adapter.Connect(ctx); err != nil {
		log.WithError(err).Fatal("connecting to engine")
	}
	defer adapter.Close()

	snap, err := adapter.Introspect(ctx)
	if err != nil {
		log.WithError(err).Fatal("introspecting schema")
	}

	var task kernel.Task
	if *expectedFlag != "" {
		task.Expected, err = loadExpectedSet(*expectedFlag)
		if err != nil {
			log.WithError(err).Fatal("loading expected result set")
		}
	}

	var planText string
	if *planFlag != "" {
		data, err := os.ReadFile(*planFlag)
		if err != nil {
			log.WithError(err).Fatal("reading plan text")
		}
		planText = string(data)
	}

	k := kernel.New(adapter, *dialectFlag, cfg.Execution)

	evalCtx, evalCancel := context.WithTimeout(context.Background(), cfg.Execution.QueryTimeout+5*time.Second)
	defer evalCancel()

	score, err := k.Evaluate(evalCtx, *sqlFlag, task, snap, kernel.EvalOptions{
		Dialect:       *dialectFlag,
		PlanText:      planText,
		WeightsPreset: *weightsPreset,
	})
	if err != nil {
		log.WithError(err).Fatal("evaluating query")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(score); err != nil {
		log.WithError(err).Fatal("encoding score")
	}
}

func loadExpectedSet(path string) (*comparator.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading expected result file: %w", err)
	}
	var payload struct {
		Columns []string         `json:"columns"`
		Rows    []comparator.Row `json:"rows"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing expected result file: %w", err)
	}
	return &comparator.Set{Columns: payload.Columns, Rows: payload.Rows}, nil
}
