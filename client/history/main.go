// Command history browses the market sentiment log in the terminal.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/store"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
)

func main() {
	_ = godotenv.Load()

	defaultPath := os.Getenv("SENTIMENT_CSV")
	if defaultPath == "" {
		defaultPath = "market_sentiment.csv"
	}
	csvPath := flag.String("csv", defaultPath, "sentiment CSV to read")
	fromDB := flag.Bool("db", false, "read the Postgres mirror at DATABASE_URL instead of the CSV")
	flag.Parse()

	load := store.NewCSVStore(*csvPath).Records
	if *fromDB {
		pg := store.NewPostgresStore(os.Getenv("DATABASE_URL"))
		load = func() ([]types.SentimentRecord, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return pg.Records(ctx)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("failed to initialize screen: %v", err)
	}

	app := newApp(screen, load)
	if err := app.run(); err != nil {
		screen.Fini()
		log.Fatalf("Error running app: %v", err)
	}
	screen.Fini()
}
