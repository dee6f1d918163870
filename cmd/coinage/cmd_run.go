package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/coinage/internal/agents"
	"github.com/talgya/coinage/internal/api"
	"github.com/talgya/coinage/internal/config"
	"github.com/talgya/coinage/internal/engine"
	"github.com/talgya/coinage/internal/finance"
	"github.com/talgya/coinage/internal/govern"
	"github.com/talgya/coinage/internal/persistence"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the economy simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return runSimulation(cfgPath)
		},
	}
	return cmd
}

func runSimulation(cfgPath string) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	runID, err := db.EnsureRunID()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	slog.Info("database opened", "path", cfg.DBPath, "run_id", runID)

	sim, startDay, err := restoreOrSeed(db, cfg)
	if err != nil {
		return err
	}

	eng := engine.NewEngine()
	eng.Day = startDay
	eng.OnDay = sim.TickDay
	eng.OnWeek = sim.TickWeek

	if cfg.APIPort > 0 {
		srv := &api.Server{Sim: sim, Eng: eng, Port: cfg.APIPort}
		srv.Start()
	}

	if cfg.Days > 0 {
		eng.RunDays(cfg.Days)
	} else {
		// Paced mode: run until interrupted.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go eng.Run()
		<-sigCh
		eng.Stop()
	}

	if err := saveWorld(db, sim, eng.Day); err != nil {
		return fmt.Errorf("save world: %w", err)
	}

	printFinalReport(sim)
	return nil
}

// restoreOrSeed loads a saved economy or spawns the starting cast.
func restoreOrSeed(db *persistence.DB, cfg config.Config) (*engine.Simulation, uint64, error) {
	simCfg := engine.DefaultConfig()
	simCfg.Seed = cfg.Seed
	simCfg.FoodProduct = cfg.FoodProduct
	simCfg.LoanFloor = cfg.LoanFloor
	simCfg.LoanAmount = cfg.LoanAmount

	if db.HasState() {
		slog.Info("found saved economy, loading...")

		people, err := db.LoadPersons()
		if err != nil {
			return nil, 0, fmt.Errorf("load persons: %w", err)
		}
		businesses, err := db.LoadBusinesses()
		if err != nil {
			return nil, 0, fmt.Errorf("load businesses: %w", err)
		}
		gov, err := db.LoadGovernment()
		if err != nil {
			return nil, 0, fmt.Errorf("load government: %w", err)
		}

		lender, err := db.LoadLender(nil)
		if err != nil {
			return nil, 0, fmt.Errorf("load lender: %w", err)
		}

		sim := engine.NewSimulation(simCfg, people, businesses, gov, lender)
		lender.SetRegistry(sim.Registry)

		market, err := db.LoadMarket()
		if err != nil {
			return nil, 0, fmt.Errorf("load market: %w", err)
		}
		sim.Market = market

		var startDay uint64
		if dayStr, err := db.GetMeta("last_day"); err == nil {
			fmt.Sscanf(dayStr, "%d", &startDay)
		}

		slog.Info("economy restored",
			"persons", len(people),
			"businesses", len(businesses),
			"day", startDay,
		)
		return sim, startDay, nil
	}

	slog.Info("seeding new economy", "seed", cfg.Seed)
	spawner := agents.NewSpawner(cfg.Seed)

	people := []*agents.Person{
		spawner.SpawnPerson("Aldric", "farmer", 50, 10, 5),
		spawner.SpawnPerson("Berta", "merchant", 100, 15, 10),
		spawner.SpawnPerson("Casimir", "noble", 200, 20, 15),
	}
	people[2].RiskTolerance = 70

	businesses := []*agents.Business{
		spawner.SpawnBusiness("wheat", "agriculture", 2000, 5, 10, 2),
		spawner.SpawnBusiness("bread", "food", 2000, 10, 5, 1),
	}

	gov := govern.NewGovernment(1000)
	gov.Balance = 10000
	gov.TaxRate = cfg.TaxRate
	for sector, amount := range cfg.SectorSubsidies {
		gov.SectorSubsidies[sector] = amount
	}

	lender := finance.NewProvider(1001, nil)
	lender.Balance = 50000
	lender.BaseInterestRate = cfg.BaseInterestRate

	sim := engine.NewSimulation(simCfg, people, businesses, gov, lender)
	lender.SetRegistry(sim.Registry)

	return sim, 0, nil
}

func saveWorld(db *persistence.DB, sim *engine.Simulation, day uint64) error {
	if err := db.SavePersons(sim.People); err != nil {
		return err
	}
	if err := db.SaveBusinesses(sim.Businesses); err != nil {
		return err
	}
	if err := db.SaveMarket(sim.Market); err != nil {
		return err
	}
	if err := db.SaveLender(sim.Lender); err != nil {
		return err
	}
	if err := db.SaveGovernment(sim.Gov); err != nil {
		return err
	}
	if err := db.AppendEvents(sim.Events); err != nil {
		return err
	}
	return db.SetMeta("last_day", fmt.Sprintf("%d", day))
}

func printFinalReport(sim *engine.Simulation) {
	fmt.Println("\nFinal state:")
	for _, p := range sim.People {
		fmt.Printf("  %-10s %8s coins, satisfaction %d, items %d\n",
			p.Name, humanize.Comma(p.Balance), p.Satisfaction, len(p.Inventory))
	}
	for _, b := range sim.Businesses {
		fmt.Printf("  %-10s %8s coins, stock %d, price %d\n",
			b.Product, humanize.Comma(b.Balance), b.Stock, b.Price)
	}
	fmt.Printf("  treasury   %8s coins, approval %.1f\n",
		humanize.Comma(sim.Gov.Balance), sim.Gov.ApprovalRating)
	fmt.Printf("  lender     %8s coins, loans %d (%d defaulted)\n",
		humanize.Comma(sim.Lender.Balance), sim.Stats.ActiveLoans+sim.Stats.DefaultedLoans,
		sim.Stats.DefaultedLoans)

	fmt.Println("\nMarket:")
	for _, st := range sim.Market.Snapshot() {
		fmt.Printf("  %-10s stock %6d, price %d coins\n", st.Name, st.Stock, st.Price)
	}
}
