// Package main implements the farsight CLI for Farcaster audience analysis.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yanlabs/farsight/pkg/agent"
	"github.com/yanlabs/farsight/pkg/gemini"
	"github.com/yanlabs/farsight/pkg/histogram"
	"github.com/yanlabs/farsight/pkg/timeslot"
)

var (
	farcasterKey = flag.String("farcaster-key", "", "Farcaster API key (or set FARCASTER_API_KEY)")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	geminiModel  = flag.String("gemini-model", gemini.DefaultModel, "Gemini model to use (or set GEMINI_MODEL)")
	searchAPIKey = flag.String("search-key", "", "Web search API key (or set SEARCH_API_KEY)")
	cacheDir     = flag.String("cache-dir", "", "Cache directory (or set CACHE_DIR)")
	noCache      = flag.Bool("no-cache", false, "Disable caching")
	jsonOut      = flag.Bool("json", false, "Print the raw report as JSON")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] <command> [fid]

Commands:
  optimal <fid>   Best UTC hours and weekdays to cast
  fans <fid>      Top followers ranked by reach
  trending        What the network is talking about right now
  persona <fid>   Who this account is, from bio and casts
  report <fid>    Weekly audience report
  cast <fid>      Cast ideas grounded in recent context

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	// A local .env is a convenience for development; missing is fine.
	_ = godotenv.Load()

	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Println("farsight CLI v1.2.0")
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	command := args[0]

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *farcasterKey == "" {
		*farcasterKey = os.Getenv("FARCASTER_API_KEY")
	}
	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == gemini.DefaultModel && os.Getenv("GEMINI_MODEL") != "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if *searchAPIKey == "" {
		*searchAPIKey = os.Getenv("SEARCH_API_KEY")
	}
	if *cacheDir == "" {
		*cacheDir = os.Getenv("CACHE_DIR")
	}

	opts := []agent.Option{
		agent.WithFarcasterAPIKey(*farcasterKey),
		agent.WithGeminiAPIKey(*geminiAPIKey),
		agent.WithGeminiModel(*geminiModel),
		agent.WithSearchAPIKey(*searchAPIKey),
	}
	if *noCache {
		opts = append(opts, agent.WithNoCache())
	} else if *cacheDir != "" {
		opts = append(opts, agent.WithCacheDir(*cacheDir))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	analyzer := agent.NewWithLogger(ctx, logger, opts...)
	defer func() {
		if err := analyzer.Close(); err != nil {
			logger.Error("failed to close analyzer", "error", err)
		}
	}()

	if err := run(ctx, analyzer, command, args[1:]); err != nil {
		cancel()
		logger.Error("analysis failed", "command", command, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, analyzer *agent.Analyzer, command string, args []string) error {
	needsFID := command != "trending"
	fid := ""
	if needsFID {
		if len(args) != 1 {
			return fmt.Errorf("the %s command takes exactly one FID argument", command)
		}
		fid = args[0]
	}

	switch command {
	case "optimal":
		report, err := analyzer.OptimalTime(ctx, fid)
		if err != nil {
			return err
		}
		if *jsonOut {
			return printJSON(report)
		}
		printOptimal(report)
	case "fans":
		report, err := analyzer.TopFans(ctx, fid)
		if err != nil {
			return err
		}
		if *jsonOut {
			return printJSON(report)
		}
		printFans(report)
	case "trending":
		report, err := analyzer.Trending(ctx)
		if err != nil {
			return err
		}
		if *jsonOut {
			return printJSON(report)
		}
		printNarrative("🔥 Trending on Farcaster", report.Narrative, report.Errors)
	case "persona":
		report, err := analyzer.Persona(ctx, fid)
		if err != nil {
			return err
		}
		if *jsonOut {
			return printJSON(report)
		}
		title := fmt.Sprintf("👤 Persona: FID %s", report.FID)
		if report.Username != "" {
			title = fmt.Sprintf("👤 Persona: @%s (FID %s)", report.Username, report.FID)
		}
		printNarrative(title, report.Narrative, report.Errors)
	case "report":
		report, err := analyzer.WeeklyReport(ctx, fid)
		if err != nil {
			return err
		}
		if *jsonOut {
			return printJSON(report)
		}
		printWeekly(report)
	case "cast":
		report, err := analyzer.CastIdeas(ctx, fid)
		if err != nil {
			return err
		}
		if *jsonOut {
			return printJSON(report)
		}
		printIdeas(report)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func printJSON(report any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func printNarrative(title, narrative string, errs []string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("─", 50))
	fmt.Println(narrative)
	printErrors(errs)
}

func printOptimal(report *agent.OptimalTimeReport) {
	fmt.Printf("\n⏰ Optimal Casting Times: FID %s\n", report.FID)
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("📊 Casts analyzed: %d\n", report.CastCount)

	if len(report.PeakHours) > 0 {
		labels := make([]string, 0, len(report.PeakHours))
		for _, h := range report.PeakHours {
			labels = append(labels, timeslot.HourLabel(h))
		}
		fmt.Printf("🕐 Peak hours:     %s (%d casts each)\n", strings.Join(labels, ", "), report.PeakHourCount)
	}
	if len(report.PeakDays) > 0 {
		labels := make([]string, 0, len(report.PeakDays))
		for _, d := range report.PeakDays {
			labels = append(labels, timeslot.WeekdayLabel(d))
		}
		fmt.Printf("📅 Peak days:      %s (%d casts each)\n", strings.Join(labels, ", "), report.PeakDayCount)
	}

	fmt.Print(histogram.Render(timeslot.Tally(report.HourTally), timeslot.Tally(report.DayTally)))

	fmt.Printf("\n%s\n", report.Narrative)
	printErrors(report.Errors)
}

func printFans(report *agent.TopFansReport) {
	fmt.Printf("\n🏆 Top Fans: FID %s\n", report.FID)
	fmt.Println(strings.Repeat("─", 50))
	for i, fan := range report.Fans {
		name := fan.Username
		if fan.DisplayName != "" {
			name = fmt.Sprintf("%s (@%s)", fan.DisplayName, fan.Username)
		}
		fmt.Printf("%d. %s — %d followers\n", i+1, name, fan.FollowerCount)
	}
	fmt.Printf("\n%s\n", report.Narrative)
	printErrors(report.Errors)
}

func printWeekly(report *agent.WeeklyReport) {
	fmt.Printf("\n📬 Weekly Report: FID %s\n", report.FID)
	fmt.Println(strings.Repeat("─", 50))
	if len(report.NewFollowers) > 0 {
		fmt.Println("New power followers:")
		for _, fan := range report.NewFollowers {
			fmt.Printf("  • @%s (%d followers)\n", fan.Username, fan.FollowerCount)
		}
		fmt.Println()
	}
	fmt.Println(report.Narrative)
	printErrors(report.Errors)
}

func printIdeas(report *agent.CastIdeasReport) {
	fmt.Printf("\n💡 Cast Ideas: FID %s\n", report.FID)
	fmt.Println(strings.Repeat("─", 50))
	if report.Topic != "" {
		fmt.Printf("Topic: %s\n\n", report.Topic)
	}
	for i, idea := range report.Ideas {
		fmt.Printf("%d. %s\n", i+1, idea)
	}
	if len(report.Ideas) == 0 {
		fmt.Println("No ideas could be generated this time.")
	}
	printErrors(report.Errors)
}

func printErrors(errs []string) {
	if len(errs) == 0 {
		return
	}
	fmt.Println()
	for _, e := range errs {
		fmt.Printf("⚠️  %s\n", e)
	}
}
