// Command-line entry point for the pairing parser.
//
// Input is a plain-text rendering of a crew-scheduling pairing document
// (final or prelim style). The file is decoded as UTF-8 with a Latin-1
// fallback, parsed into Trip records, and the records are written as an
// indented JSON array, archived, or published depending on the subcommand.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"pairing_parser/internal/api"
	"pairing_parser/internal/document"
	"pairing_parser/internal/pairing"
	"pairing_parser/internal/publish"
	"pairing_parser/internal/storage"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "pairing_parser - commands:")
	fmt.Fprintln(w, "  extract  - parse a pairing document and output JSON")
	fmt.Fprintln(w, "  store    - parse a document and archive the trips")
	fmt.Fprintln(w, "  serve    - serve the archive over HTTP")
	fmt.Fprintln(w, "  publish  - parse a document and publish trips to NATS")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pairing_parser extract -input bid.txt [-output out.json] [-pretty] [-stats]")
	fmt.Fprintln(w, "  pairing_parser store -input bid.txt [-db pairings.db] [-warehouse]")
	fmt.Fprintln(w, "  pairing_parser serve [-db pairings.db] [-port 8080]")
	fmt.Fprintln(w, "  pairing_parser publish -input bid.txt [-nats nats://localhost:4222]")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	switch strings.ToLower(os.Args[1]) {
	case "extract":
		runExtract(os.Args[2:])
	case "store":
		runStore(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "publish":
		runPublish(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}
}

// readDocument reads a document file as UTF-8, falling back to Latin-1 when
// the bytes are not valid UTF-8 (older scheduling exports).
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	// Latin-1 bytes map one-to-one onto the first 256 code points.
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

func parseFile(path string) ([]*pairing.Trip, error) {
	text, err := readDocument(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return document.Parse(text, document.Options{}), nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	inPath := fs.String("input", "", "Input pairing document (required)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", true, "Pretty-print JSON output")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr")
	_ = fs.Parse(args)

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "extract: -input is required")
		os.Exit(2)
	}

	trips, err := parseFile(*inPath)
	if err != nil {
		fatal(err)
	}
	if trips == nil {
		trips = []*pairing.Trip{}
	}

	var out []byte
	if *pretty {
		out, err = json.MarshalIndent(trips, "", "  ")
	} else {
		out, err = json.Marshal(trips)
	}
	if err != nil {
		fatal(fmt.Errorf("encode JSON: %w", err))
	}

	var w io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fatal(fmt.Errorf("create output: %w", err))
		}
		defer f.Close()
		w = f
	}
	_, _ = w.Write(out)
	if w == os.Stdout {
		_, _ = w.Write([]byte("\n"))
	}

	if *showStats {
		finals, prelims := 0, 0
		for _, t := range trips {
			if t.IsPrelim {
				prelims++
			} else {
				finals++
			}
		}
		fmt.Fprintf(os.Stderr, "stats: trips=%d final=%d prelim=%d\n", len(trips), finals, prelims)
	}
}

func runStore(args []string) {
	fs := flag.NewFlagSet("store", flag.ExitOnError)
	inPath := fs.String("input", "", "Input pairing document (required)")
	dbPath := fs.String("db", "pairings.db", "SQLite archive path")
	warehouse := fs.Bool("warehouse", false, "Also write to Postgres and ClickHouse")
	_ = fs.Parse(args)

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "store: -input is required")
		os.Exit(2)
	}

	trips, err := parseFile(*inPath)
	if err != nil {
		fatal(err)
	}

	db, err := storage.Open(*dbPath)
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	if err := db.InsertAll(trips, *inPath); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "archived %d trips to %s\n", len(trips), *dbPath)

	if *warehouse {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		wh, err := storage.OpenWarehouse(ctx, storage.DefaultWarehouseConfig())
		if err != nil {
			fatal(err)
		}
		defer wh.Close()

		if err := wh.CreateSchemas(ctx); err != nil {
			fatal(err)
		}
		for _, trip := range trips {
			if err := wh.PG.UpsertTrip(ctx, trip); err != nil {
				fatal(fmt.Errorf("postgres upsert: %w", err))
			}
		}
		if err := wh.CH.InsertTrips(ctx, trips); err != nil {
			fatal(fmt.Errorf("clickhouse insert: %w", err))
		}
		fmt.Fprintf(os.Stderr, "warehoused %d trips\n", len(trips))
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dbPath := fs.String("db", "pairings.db", "SQLite archive path")
	port := fs.Int("port", 8080, "HTTP listen port")
	_ = fs.Parse(args)

	db, err := storage.Open(*dbPath)
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	if err := api.NewServer(db, *port).Run(); err != nil {
		fatal(err)
	}
}

func runPublish(args []string) {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	inPath := fs.String("input", "", "Input pairing document (required)")
	natsURL := fs.String("nats", "nats://localhost:4222", "NATS server URL")
	_ = fs.Parse(args)

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "publish: -input is required")
		os.Exit(2)
	}

	trips, err := parseFile(*inPath)
	if err != nil {
		fatal(err)
	}

	pub, err := publish.Connect(*natsURL)
	if err != nil {
		fatal(err)
	}
	defer pub.Close()

	if err := pub.PublishAll(trips); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "published %d trips\n", len(trips))
}
