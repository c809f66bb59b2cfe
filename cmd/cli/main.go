package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/kv"
	"github.com/dvloznov/finance-dashboard/internal/llm"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/store"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		runImport(log)
	case "list":
		runList(log)
	case "summary":
		runSummary(log)
	case "categorize":
		runCategorize(log)
	case "insights":
		runInsights(log)
	case "chat":
		runChat(log)
	case "seed":
		runSeed(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Dashboard CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  import      Import transactions from a CSV file")
	fmt.Println("  list        List transactions")
	fmt.Println("  summary     Show the dashboard summary")
	fmt.Println("  categorize  Categorize uncategorized transactions with the model")
	fmt.Println("  insights    Ask the model for spending insights")
	fmt.Println("  chat        Chat about your finances (interactive)")
	fmt.Println("  seed        Reset the store to the seed data")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// openService wires the persistence and model layers the way cmd/api
// does, minus the HTTP stack. withModel commands fail fast when no API
// key is configured instead of degrading silently.
func openService(ctx context.Context, log zerolog.Logger, withModel bool) (*dashboard.Service, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	kvStore, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open kv store: %w", err)
	}

	txStore := store.New(kvStore, log)
	if err := txStore.Load(ctx); err != nil {
		kvStore.Close()
		return nil, nil, fmt.Errorf("load transactions: %w", err)
	}

	var gateway llm.Gateway
	if withModel {
		if cfg.GeminiAPIKey == "" {
			kvStore.Close()
			return nil, nil, fmt.Errorf("GEMINI_API_KEY is required for this command")
		}
		client, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			kvStore.Close()
			return nil, nil, fmt.Errorf("create model client: %w", err)
		}
		gateway = client
	}

	svc := dashboard.New(txStore, gateway, cfg.CategoryPolicy, log)
	cleanup := func() {
		svc.Close()
		kvStore.Close()
	}
	return svc, cleanup, nil
}

func runImport(log zerolog.Logger) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to the CSV file (Date,Description,Amount)")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	content, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read CSV file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, cleanup, err := openService(ctx, log, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	defer cleanup()

	stats, err := svc.ImportCSV(ctx, string(content))
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	fmt.Printf("Imported %d of %d rows (%d dropped).\n", stats.Imported, stats.Lines, stats.Dropped)
}

func runList(log zerolog.Logger) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	category := fs.String("category", "", "Filter by category (use \"Uncategorized\" for pending)")
	txType := fs.String("type", "", "Filter by type (INCOME or EXPENSE)")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, cleanup, err := openService(ctx, log, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	defer cleanup()

	txs := svc.FilterTransactions(*category, *txType)
	if len(txs) == 0 {
		fmt.Println("No transactions.")
		return
	}

	for _, t := range txs {
		sign := "+"
		if t.Type == domain.TypeExpense {
			sign = "-"
		}
		marker := ""
		if t.IsAnomaly {
			marker = "  [anomaly]"
		}
		cat := t.Category
		if cat == "" {
			cat = domain.CategoryUncategorized
		}
		fmt.Printf("%s  %-40s %s$%9.2f  %-16s %s%s\n",
			t.Date, t.Description, sign, t.Amount, cat, t.ID, marker)
	}
	fmt.Printf("\n%d transaction(s).\n", len(txs))
}

func runSummary(log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, cleanup, err := openService(ctx, log, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	defer cleanup()

	s := svc.Summary()

	fmt.Println("=== Summary ===")
	fmt.Printf("Income:        $%.2f\n", s.TotalIncome)
	fmt.Printf("Expenses:      $%.2f\n", s.TotalExpenses)
	fmt.Printf("Net:           $%.2f\n", s.Net)
	fmt.Printf("Transactions:  %d\n", s.TransactionCount)
	fmt.Printf("Uncategorized: %d\n", s.Uncategorized)
	fmt.Printf("Anomalies:     %d\n", s.AnomalyCount)

	if len(s.CategoryTotals) > 0 {
		fmt.Println("\nExpenses by category:")
		cats := make([]string, 0, len(s.CategoryTotals))
		for c := range s.CategoryTotals {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			fmt.Printf("  %-18s $%.2f\n", c, s.CategoryTotals[c])
		}
	}
}

func runCategorize(log zerolog.Logger) {
	fs := flag.NewFlagSet("categorize", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, cleanup, err := openService(ctx, log, true)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	defer cleanup()

	res, err := svc.Categorize(ctx)
	if errors.Is(err, llm.ErrRateLimited) {
		fmt.Println(dashboard.BusyMessage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Categorization failed")
	}

	if res.Requested == 0 {
		fmt.Println("Nothing to categorize.")
		return
	}
	fmt.Printf("Categorized %d of %d transaction(s).\n", res.Updated, res.Requested)
}

func runInsights(log zerolog.Logger) {
	fs := flag.NewFlagSet("insights", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, cleanup, err := openService(ctx, log, true)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	defer cleanup()

	res := svc.Insights(ctx)
	fmt.Println(res.Text)
	if res.RateLimited {
		os.Exit(1)
	}
}

func runChat(log zerolog.Logger) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, cleanup, err := openService(ctx, log, true)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	defer cleanup()

	fmt.Println("Chat about your finances. Empty line or Ctrl-D to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := scanner.Text()
		if text == "" {
			break
		}

		// Chunks print as they arrive; only the reply's delta matters
		// here, so track how much has been shown already.
		shown := 0
		render := func(msgs []domain.ChatMessage) {
			if len(msgs) == 0 {
				return
			}
			reply := msgs[len(msgs)-1]
			if reply.Role != domain.RoleModel {
				return
			}
			if len(reply.Text) > shown {
				fmt.Print(reply.Text[shown:])
				shown = len(reply.Text)
			}
		}

		// A failed reply carries the busy or failure text, so render
		// already showed it; nothing extra to print on error.
		if _, err := svc.SendChat(ctx, text, render); err != nil && !errors.Is(err, llm.ErrRateLimited) {
			log.Debug().Err(err).Msg("Chat reply failed")
		}
		fmt.Println()
	}
	fmt.Println("Bye.")
}

func runSeed(log zerolog.Logger) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, cleanup, err := openService(ctx, log, false)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	defer cleanup()

	if err := svc.Reset(ctx); err != nil {
		log.Fatal().Err(err).Msg("Seed failed")
	}
	fmt.Printf("Store reset to %d seed transaction(s).\n", len(store.SeedTransactions()))
}
