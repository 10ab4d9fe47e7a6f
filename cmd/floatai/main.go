package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/YashwanthKamireddi/Float-Deck/internal/api"
	"github.com/YashwanthKamireddi/Float-Deck/internal/client"
	"github.com/YashwanthKamireddi/Float-Deck/internal/ingest"
	"github.com/YashwanthKamireddi/Float-Deck/internal/session"
	"github.com/YashwanthKamireddi/Float-Deck/internal/store"
)

type ServeCmd struct {
	DB          string `help:"Path to SQLite database." default:"data/floatai.db" env:"DATABASE_PATH"`
	Port        string `help:"HTTP server port." default:"8000" env:"API_PORT"`
	UpstreamAsk string `help:"Base URL of the external AI service proxied by /api/ask." env:"AI_UPSTREAM_URL"`
	APIKey      string `help:"Shared key required as x-api-key on /api routes." env:"API_SHARED_KEY"`
	RateLimit   int    `help:"Per-IP requests per minute." default:"60" env:"RATE_LIMIT_PER_MINUTE"`
}

func (c *ServeCmd) Run() error {
	st, closeDB, err := openStore(c.DB)
	if err != nil {
		return err
	}
	defer closeDB()

	server := api.NewServer(st, c.Port)
	server.SetRateLimit(c.RateLimit)
	if c.APIKey != "" {
		server.SetAPIKey(c.APIKey)
	}
	if c.UpstreamAsk != "" {
		server.SetUpstreamAsk(c.UpstreamAsk)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type IngestCmd struct {
	DB    string `help:"Path to SQLite database." default:"data/floatai.db" env:"DATABASE_PATH"`
	Host  string `help:"GDAC FTP host." default:"ftp.ifremer.fr:21" env:"GDAC_HOST"`
	Limit int    `help:"Process at most N index rows (0 = all)." default:"5000"`
}

func (c *IngestCmd) Run() error {
	st, closeDB, err := openStore(c.DB)
	if err != nil {
		return err
	}
	defer closeDB()

	ingestor := ingest.NewIngestor(st, ingest.NewGDACClient(c.Host))
	count, err := ingestor.Run(c.Limit)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	log.Printf("ingested %d profile rows from %s", count, c.Host)
	return nil
}

type SeedCmd struct {
	DB string `help:"Path to SQLite database." default:"data/floatai.db" env:"DATABASE_PATH"`
}

func (c *SeedCmd) Run() error {
	st, closeDB, err := openStore(c.DB)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := ingest.SeedSamples(st, time.Now()); err != nil {
		return err
	}
	log.Println("sample fleet seeded")
	return nil
}

type WelcomeCmd struct {
	BaseURL string `arg:"" help:"FloatAI backend base URL."`
	DB      string `help:"SQLite database used for the welcome snapshot cache." default:"data/floatai.db" env:"DATABASE_PATH"`
	APIKey  string `help:"Shared key sent as x-api-key." env:"API_SHARED_KEY"`
}

func (c *WelcomeCmd) Run() error {
	st, closeDB, err := openStore(c.DB)
	if err != nil {
		return err
	}
	defer closeDB()

	backend := client.New(c.BaseURL)
	backend.SetSnapshotStore(st)
	if c.APIKey != "" {
		backend.SetAPIKey(c.APIKey)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ses := session.New(backend)
	res := ses.Welcome(ctx)
	if res == nil {
		return fmt.Errorf("welcome load was cancelled")
	}

	status, detail := backend.Status()
	fmt.Printf("source: %s\n", res.Source)
	fmt.Printf("status: %s", status)
	if detail != "" {
		fmt.Printf(" (%s)", detail)
	}
	fmt.Println()
	fmt.Println(ses.Synopsis().Headline())
	return nil
}

var cli struct {
	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Run the dashboard API server."`
	Ingest  IngestCmd  `cmd:"" help:"Load the ARGO GDAC profile index into the database."`
	Seed    SeedCmd    `cmd:"" help:"Seed the database with the offline sample fleet."`
	Welcome WelcomeCmd `cmd:"" help:"Run the resilient welcome load against a backend and print its synopsis."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("floatai"),
		kong.Description("FloatAI: ARGO float dashboard backend."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

func openStore(path string) (*store.Store, func(), error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return st, func() { db.Close() }, nil
}
