/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */
/* Copyright 2021, Gurobi Optimization, LLC */

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.solver4all.com/azaryc2s/cvrp"
	"git.solver4all.com/azaryc2s/cvrp/bnb"
	"git.solver4all.com/azaryc2s/cvrp/mip"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "cvrp-solver"
	app.Usage = "solve a capacitated vehicle routing instance by branch-and-cut"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "input", Value: "input.json", Usage: "Path to the instance, JSON or CVRPLIB (.vrp)"},
		cli.StringFlag{Name: "output", Usage: "Path to the output file. By default the input file will be overwritten adding the solution (JSON input only)"},
		cli.StringFlag{Name: "config", Usage: "YAML file with the solver settings"},
		cli.StringFlag{Name: "output-dir", Usage: "Directory for the model and solution files"},
		cli.Float64Flag{Name: "time-limit", Usage: "Time limit of the search in seconds"},
		cli.IntFlag{Name: "threads", Usage: "Number of search threads, 0 lets the engine decide"},
		cli.StringFlag{Name: "engine", Usage: "Engine used for the search. Possible: {BNB,GUROBI}"},
		cli.IntFlag{Name: "log", Usage: "Level of the logging output. Higher value is more verbose. Range 1-4"},
		cli.BoolFlag{Name: "export-model", Usage: "Write model.lp and model_end.lp to the output directory"},
		cli.StringFlag{Name: "metrics", Usage: "Write the separation metrics to this file in the Prometheus text format"},
	}
	app.Action = run
	return app
}

func loadConfig(c *cli.Context) (*cvrp.Config, error) {
	cfg := cvrp.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = cvrp.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("time-limit") {
		cfg.TimeLimit = c.Float64("time-limit")
	}
	if c.IsSet("threads") {
		cfg.Threads = c.Int("threads")
	}
	if c.IsSet("engine") {
		cfg.Engine = c.String("engine")
	}
	if c.IsSet("log") {
		cfg.LogLevel = c.Int("log")
	}
	if c.IsSet("export-model") {
		cfg.ExportModel = c.Bool("export-model")
	}
	if c.IsSet("metrics") {
		cfg.MetricsFile = c.String("metrics")
	}
	return cfg, cfg.Validate()
}

func newEngine(cfg *cvrp.Config, name string) (mip.Engine, error) {
	if cfg.Engine == cvrp.ENGINE_GUROBI {
		return newGurobiEngine(name, filepath.Join(cfg.OutputDir, "cvrp_gurobi.log"), cfg.Threads)
	}
	e := bnb.New(name)
	if cfg.Threads > 0 {
		if err := e.SetThreads(cfg.Threads); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func run(c *cli.Context) error {
	inputF := c.String("input")
	cfg, err := loadConfig(c)
	if err != nil {
		cvrp.InitLoggers(cvrp.LOG_ERR)
		cvrp.Log(cvrp.LOG_ERR, "At %s: %s", inputF, err.Error())
		return cli.NewExitError(err.Error(), 1)
	}
	cvrp.InitLoggers(cfg.LogLevel)

	inst, err := cvrp.LoadInstance(inputF)
	if err != nil {
		cvrp.Log(cvrp.LOG_ERR, "At %s: %s", inputF, err.Error())
		return cli.NewExitError(err.Error(), 1)
	}
	if err := inst.Validate(); err != nil {
		cvrp.Log(cvrp.LOG_ERR, "At %s: %s", inputF, err.Error())
		return cli.NewExitError(err.Error(), 1)
	}
	// only invalid input fails the process, everything past this point is
	// reported through the log
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		cvrp.Log(cvrp.LOG_ERR, "Couldn't create %s: %s", cfg.OutputDir, err.Error())
		return nil
	}

	engine, err := newEngine(cfg, inst.Name)
	if err != nil {
		cvrp.Log(cvrp.LOG_ERR, "Couldn't create the %s engine: %s", cfg.Engine, err.Error())
		return nil
	}
	defer engine.Free()

	reg := prometheus.NewRegistry()
	driver := &cvrp.Driver{
		Engine:  engine,
		Config:  cfg,
		Metrics: cvrp.NewMetrics(reg),
		System:  cvrp.CollectSysInfo(),
	}
	sol, err := driver.Solve(inst)
	if err != nil {
		var cfgErr *cvrp.ConfigurationError
		if errors.As(err, &cfgErr) {
			return cli.NewExitError(err.Error(), 1)
		}
		cvrp.Log(cvrp.LOG_ERR, "At %s: %s", inputF, err.Error())
	}
	if sol == nil {
		return nil
	}
	sol.Comment = fmt.Sprintf("Solver-Settings: Engine=%s, Threads=%d. %s", cfg.Engine, engine.Threads(), sol.Comment)
	inst.Solution = sol

	if err := cvrp.WriteSolution(cfg.OutputDir, inst, sol); err != nil {
		cvrp.Log(cvrp.LOG_ERR, "Couldn't write the solution files: %s", err.Error())
	}
	if outF := outputFile(c, inputF); outF != "" {
		if err := cvrp.WriteInstanceJSON(outF, inst); err != nil {
			cvrp.Log(cvrp.LOG_ERR, "At %s: %s", outF, err.Error())
		}
	}
	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			cvrp.Log(cvrp.LOG_ERR, "Couldn't write the metrics to %s: %s", cfg.MetricsFile, err.Error())
		}
	}
	cvrp.Log(cvrp.LOG_INFO, "Finished %s with status %s and obj-Value %d", inst.Name, sol.Status, sol.Obj)
	return nil
}

// outputFile is where the instance with its solution goes. CVRPLIB input is
// never overwritten.
func outputFile(c *cli.Context, inputF string) string {
	if out := c.String("output"); out != "" {
		return out
	}
	if strings.EqualFold(filepath.Ext(inputF), ".vrp") {
		return strings.TrimSuffix(inputF, filepath.Ext(inputF)) + ".json"
	}
	return inputF
}
