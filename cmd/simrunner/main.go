// Package main - simrunner
// Headless deterministic driver: advances a fresh (or loaded) ledger a
// fixed number of ticks with a seeded RNG and a greedy bot schedule, then
// prints a run summary. Used for balance tuning and regression sweeps.
package main

import (
	"flag"
	"fmt"
	"os"

	"magnate/internal/domain/ledger"
	"magnate/internal/domain/rules"
	"magnate/internal/engine"
	"magnate/internal/events"
	"magnate/internal/infra/storage"
	"magnate/internal/platform/logger"
	"magnate/internal/platform/tuning"
)

func main() {
	var (
		ticks       = flag.Int("ticks", 3600, "number of ticks to simulate")
		seed        = flag.Int64("seed", 1, "RNG seed for deterministic runs")
		dbPath      = flag.String("db", "", "optional SQLite path to persist the run")
		profilePath = flag.String("profile", "", "tuning profile YAML (empty for defaults)")
		bot         = flag.Bool("bot", true, "drive the greedy action schedule")
	)
	flag.Parse()

	appLogger := logger.NewLogger()
	eventLog := events.NewEventLog(nil)

	profile := tuning.Default()
	if *profilePath != "" {
		loaded, err := tuning.Load(*profilePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to load tuning profile:", err)
			os.Exit(1)
		}
		profile = loaded
	}

	var store engine.SaveStore
	if *dbPath != "" {
		db, err := storage.InitSQLite(*dbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to open database:", err)
			os.Exit(1)
		}
		store = storage.NewLedgerStore(storage.NewSQLiteSaveRepository(db), profile.SaveSlot)
	}

	l := ledger.New()
	eng := engine.NewEngine(l, profile, appLogger, eventLog, store,
		engine.WithSeed(*seed))

	if *bot {
		// Flags can be pre-set; the level gates kick in as the bot grows.
		eng.SetAutomation("collect", true)
		eng.SetAutomation("accept", true)
		eng.SetAutomation("assign", true)
	}

	fmt.Printf("simrunner: %d ticks, seed %d, bot %v\n", *ticks, *seed, *bot)

	for i := 0; i < *ticks; i++ {
		eng.StepTick()
		if *bot && i%30 == 29 {
			runBotSchedule(eng)
		}
	}
	snap := eng.Snapshot()

	fmt.Println("--- run summary ---")
	fmt.Printf("tick:            %d\n", snap.Tick)
	fmt.Printf("money:           %s\n", snap.Money.StringFixed(2))
	fmt.Printf("lifetime earned: %s\n", snap.TotalEarned.StringFixed(2))
	fmt.Printf("level:           %d (xp %d)\n", snap.Level, snap.XP)
	fmt.Printf("ventures:        %d\n", len(snap.Ventures))
	fmt.Printf("research done:   %d\n", len(snap.ResearchDone))
	fmt.Printf("prestiges:       %d (highest %s)\n", snap.TotalPrestiges, snap.HighestTier)
	fmt.Printf("events recorded: %d\n", eventLog.Len())

	if store != nil {
		if err := store.Save(eng.Ledger()); err != nil {
			fmt.Fprintln(os.Stderr, "final save failed:", err)
			os.Exit(1)
		}
	}
}

// runBotSchedule greedily spends whatever is affordable. Every call walks
// the static catalogs; the engine's try-actions refuse anything gated or
// unaffordable, so the bot needs no bookkeeping of its own.
func runBotSchedule(eng *engine.Engine) {
	// Resets first: the richest move when a gate is open.
	if eng.DoAscension() {
		return
	}
	for _, tier := range []ledger.PrestigeTier{
		ledger.PrestigeGold, ledger.PrestigeSilver, ledger.PrestigeBronze,
	} {
		if eng.DoPrestige(tier) {
			return
		}
	}

	for _, n := range ledger.DefaultResearchTree() {
		if eng.StartResearch(n.ID) {
			break
		}
	}
	for _, s := range rules.Structures() {
		if eng.BuildStructure(s.ID) {
			break
		}
	}
	for _, u := range rules.PermanentUpgrades() {
		if eng.BuyPermanentUpgrade(u.ID) {
			break
		}
	}
	for _, p := range rules.Perks() {
		if eng.BuyPerk(p.ID) {
			break
		}
	}
	eng.UpgradeVenture("venture-courier")
	eng.HireWorker("venture-courier", ledger.TierSkilled)
}
