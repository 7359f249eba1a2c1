package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"

	"bankledger/internal/database"
	"bankledger/internal/geo"
	"bankledger/internal/ingest"
	"bankledger/internal/jobs"
	"bankledger/internal/logger"
	"bankledger/internal/version"
)

func main() {
	// A missing .env file is fine; the environment still applies.
	godotenv.Load()
	logger.Init()

	app := cli.NewApp()
	app.Name = "ledger"
	app.Usage = "parse and ingest extracted-text bank statements"
	app.Version = fmt.Sprintf("%s (built %s, commit %s)", version.Version, version.BuildTime, version.GitCommit)

	app.Commands = []cli.Command{
		{
			Name:      "parse",
			Usage:     "parse a statement file and print what would be ingested, without touching the database",
			ArgsUsage: "<statement.txt>",
			Action:    runParse,
		},
		{
			Name:      "ingest",
			Usage:     "parse a statement file and write it into the ledger",
			ArgsUsage: "<statement.txt>",
			Action:    runIngest,
		},
		{
			Name:      "enqueue",
			Usage:     "queue a statement file for background ingestion",
			ArgsUsage: "<statement.txt>",
			Action:    runEnqueue,
		},
		{
			Name:   "worker",
			Usage:  "run the background job worker until interrupted",
			Action: runWorker,
		},
		{
			Name:   "merchants",
			Usage:  "list merchants the automatic categorizer could not place",
			Action: runMerchants,
		},
		{
			Name:      "categorize",
			Usage:     "assign a category to a merchant",
			ArgsUsage: "<merchant-id> <category-name>",
			Action:    runCategorize,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func dbPath() string {
	if p := os.Getenv("LEDGER_DB_PATH"); p != "" {
		return p
	}
	return "./data/ledger.db"
}

func openDB() (*database.DB, error) {
	db, err := database.Open(dbPath())
	if err != nil {
		return nil, err
	}
	if err := db.Init(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// loadResolver loads the gazetteer named by LEDGER_GAZETTEER. Ingestion
// refuses to run without one: locations would silently come out empty.
func loadResolver() (*geo.Resolver, error) {
	path := os.Getenv("LEDGER_GAZETTEER")
	if path == "" {
		return nil, fmt.Errorf("LEDGER_GAZETTEER is not set")
	}
	gaz, err := geo.LoadGazetteer(path)
	if err != nil {
		return nil, fmt.Errorf("load gazetteer: %w", err)
	}
	return geo.NewResolver(gaz), nil
}

func statementArg(c *cli.Context) (string, error) {
	path := c.Args().Get(0)
	if path == "" {
		return "", fmt.Errorf("statement file path required")
	}
	return path, nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}

func runParse(c *cli.Context) error {
	path, err := statementArg(c)
	if err != nil {
		return err
	}
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	batch := ingest.ParseLines(lines)
	stmt := batch.Statement

	fmt.Printf("Holder:         %s\n", stmt.Holder)
	fmt.Printf("Account number: %s\n", stmt.AccountNumber)
	fmt.Printf("Currency:       %s\n", stmt.Currency)
	fmt.Printf("Period:         %s to %s\n", stmt.PeriodFrom, stmt.PeriodTo)
	fmt.Printf("Transactions:   %d\n\n", len(batch.Records))

	for _, rec := range batch.Records {
		location := ""
		if rec.Merchant.LocationText != rec.Merchant.MerchantName {
			location = " @ " + rec.Merchant.LocationText
		}
		foreign := ""
		if rec.TransactionAmount != nil {
			foreign = fmt.Sprintf(" (%s %s)", rec.TransactionAmount, rec.TransactionCurrency)
		}
		fmt.Printf("  %s | %8s %s%s | %s%s\n",
			rec.Date, rec.Amount, rec.AccountCurrency, foreign,
			truncate(rec.Merchant.MerchantName, 40), location)
	}
	return nil
}

func runIngest(c *cli.Context) error {
	path, err := statementArg(c)
	if err != nil {
		return err
	}
	resolver, err := loadResolver()
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := ingest.NewEngine(ingest.NewStore(db), resolver)
	res, err := engine.IngestFile(context.Background(), path, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Batch:      %s\n", res.BatchID)
	fmt.Printf("Total:      %d\n", res.Total)
	fmt.Printf("Imported:   %d\n", res.Imported)
	fmt.Printf("Duplicates: %d\n", res.Duplicates)
	return nil
}

func runEnqueue(c *cli.Context) error {
	path, err := statementArg(c)
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.CreateJob("ingest_statement", jobs.IngestStatementPayload{FilePath: path})
	if err != nil {
		return err
	}
	fmt.Printf("Queued job %d for %s\n", id, path)
	return nil
}

func runWorker(c *cli.Context) error {
	resolver, err := loadResolver()
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	worker := jobs.NewWorker(db, logger.Default())
	worker.Register("ingest_statement", jobs.IngestStatementHandler(resolver))
	worker.Start()
	defer worker.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	return nil
}

func runMerchants(c *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	merchants, err := db.ListMerchantsNeedingCategorization()
	if err != nil {
		return err
	}
	if len(merchants) == 0 {
		fmt.Println("No merchants awaiting categorization.")
		return nil
	}
	for _, m := range merchants {
		location := ""
		if m.CountryCode != "" {
			location = " [" + m.City + " " + m.CountryCode + "]"
		}
		fmt.Printf("  %4d  %s%s\n", m.ID, m.Name, location)
	}
	return nil
}

func runCategorize(c *cli.Context) error {
	merchantID, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
	if err != nil {
		return fmt.Errorf("merchant id required: %w", err)
	}
	categoryName := c.Args().Get(1)
	if categoryName == "" {
		return fmt.Errorf("category name required")
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	categoryID, err := db.FindOrCreateCategoryByName(categoryName)
	if err != nil {
		return err
	}
	if err := db.SetMerchantCategory(merchantID, categoryID); err != nil {
		return err
	}

	m, err := db.GetMerchant(merchantID)
	if err != nil {
		return err
	}
	fmt.Printf("Categorized %s as %s\n", m.Name, categoryName)
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
