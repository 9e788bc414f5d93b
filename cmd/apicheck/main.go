// Command apicheck probes the booking API list endpoints once each and
// prints how many items every envelope held.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/ameliadesk/internal/client"
	"github.com/JonMunkholm/ameliadesk/internal/config"
	"github.com/JonMunkholm/ameliadesk/internal/logging"
)

// probes are checked in order; the first one decides the exit code.
var probes = []string{"categories", "services", "employees", "customers", "appointments"}

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load if present")
	days := flag.Int("days", 7, "appointment window in days, starting today")
	flag.Parse()

	if err := godotenv.Load(*envFile); err == nil {
		slog.Debug("loaded env file", "path", *envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	api, err := client.NewFromConfig(cfg.API)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	os.Exit(run(context.Background(), os.Stdout, api, time.Now(), *days))
}

// run prints one line per probe and returns the process exit code.
func run(ctx context.Context, out io.Writer, api *client.Client, now time.Time, days int) int {
	fmt.Fprintf(out, "API: %s\n", api.BaseURL())

	code := 0
	for i, name := range probes {
		line, ok := probe(ctx, api, name, now, days)
		fmt.Fprintln(out, line)
		if !ok && i == 0 {
			code = 1
		}
	}
	return code
}

func probe(ctx context.Context, api *client.Client, name string, now time.Time, days int) (string, bool) {
	res, ok := api.Resource(name)
	if !ok {
		return fmt.Sprintf("  %-13s SKIP  not configured", name), false
	}

	params := url.Values{}
	if name == "appointments" {
		params.Set("dates", client.DateRange(now, now.AddDate(0, 0, days)))
	}

	start := time.Now()
	result := res.List(ctx, params)
	took := time.Since(start).Round(time.Millisecond)
	if !result.OK() {
		return fmt.Sprintf("  %-13s FAIL  %v (%s)", name, result.Err, took), false
	}

	items, ok := res.Items(result)
	if !ok {
		return fmt.Sprintf("  %-13s WARN  no collection at %q (%s)", name, res.Definition().ListKey, took), true
	}
	return fmt.Sprintf("  %-13s OK    %d items (%s)", name, len(items), took), true
}
