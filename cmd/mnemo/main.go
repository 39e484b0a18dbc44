package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/mnemohq/mnemo/internal/config"
	"github.com/mnemohq/mnemo/internal/domain"
	"github.com/mnemohq/mnemo/internal/review"
	"github.com/mnemohq/mnemo/internal/sm2"
	"github.com/mnemohq/mnemo/internal/stats"
	"github.com/mnemohq/mnemo/internal/storage"
	"github.com/mnemohq/mnemo/internal/sync"
)

func main() {
	defaults := config.Default()

	flags := pflag.NewFlagSet("mnemo", pflag.ExitOnError)
	cfgPath := flags.String("config", "", "Path to a YAML config file")
	flags.String("db", defaults.DB, "Path to the SQLite database file")
	flags.String("repos_dir", defaults.ReposDir, "Directory where git deck sources are checked out")
	flags.Int("forecast_days", defaults.ForecastDays, "Days covered by the forecast command")
	flags.String("log_level", defaults.LogLevel, "Log level: debug, info, warn or error")
	response := flags.String("response", "", "Review response: know, difficult or unknown")
	quality := flags.Float64("quality", -1, "Raw 0-5 review quality (overrides --response)")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*cfgPath, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	store, err := storage.Open(cfg.DB)
	if err != nil {
		slog.Error("Failed to open database", "path", cfg.DB, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	now := time.Now().UTC()

	switch cmd := args[0]; cmd {
	case "add-source":
		err = addSource(store, args[1:])
	case "sync":
		err = sync.Run(store, cfg.ReposDir)
	case "due", "difficult", "queue":
		err = printSelection(store, cmd, now)
	case "review":
		err = reviewCard(store, args[1:], *response, *quality, now)
	case "stats":
		err = printStats(store, now)
	case "forecast":
		err = printForecast(store, cfg.ForecastDays, now)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("Command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

const usage = `mnemo - spaced-repetition deck tool

Usage: mnemo [flags] <command>

Commands:
  add-source <path|url.git>  Register a deck directory or git repository
  sync                       Reconcile all sources into the database
  due                        List cards ready for review
  difficult                  List due cards the learner struggles with
  queue                      List due and difficult cards, deduplicated
  review <card-id>           Record a review (--response or --quality)
  stats                      Show collection-wide study statistics
  forecast                   Show upcoming review load per day

Flags:`

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func addSource(store *storage.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: mnemo add-source <path/or/url.git>")
	}
	path := args[0]

	existing, err := store.FindSourceByPath(path)
	if err != nil {
		return err
	}
	if existing != nil {
		fmt.Printf("Source already registered: %s\n", path)
		return nil
	}

	kind := sync.DetectKind(path)
	id, err := store.InsertSource(path, kind)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s source %s (id %d)\n", kind, path, id)
	return nil
}

func printSelection(store *storage.Store, mode string, now time.Time) error {
	cards, err := store.AllCards()
	if err != nil {
		return err
	}

	var selected []domain.Card
	switch mode {
	case "due":
		selected = review.Due(cards, now)
	case "difficult":
		selected = review.Difficult(cards, now)
	case "queue":
		selected = review.Merge(review.Due(cards, now), review.Difficult(cards, now))
	}

	if len(selected) == 0 {
		fmt.Println("Nothing to review.")
		return nil
	}
	fmt.Printf("%d card(s):\n", len(selected))
	for _, c := range selected {
		fmt.Printf("  %s  %s\n", c.ID[:12], firstLine(c.Front))
	}
	return nil
}

func reviewCard(store *storage.Store, args []string, response string, quality float64, now time.Time) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: mnemo review <card-id> (--response know|difficult|unknown | --quality 0-5)")
	}

	card, err := findCard(store, args[0])
	if err != nil {
		return err
	}
	if card == nil {
		return fmt.Errorf("no card with ID %s", args[0])
	}

	cat := domain.ResponseCategory(response)
	switch {
	case quality >= 0:
		cat = categoryForQuality(quality)
	case cat.IsValid():
		quality = float64(sm2.ResponseToQuality(cat))
	default:
		return fmt.Errorf("pass --response know|difficult|unknown or --quality 0-5")
	}

	next := sm2.ComputeNext(card.State, quality, now)
	if err := store.ReplaceState(card.ID, next); err != nil {
		return err
	}

	// The engine never writes history; logging the review is this
	// caller's job, separate from the scheduling update.
	raw := clampRaw(quality)
	rec := domain.ReviewRecord{Timestamp: now, Response: cat, Quality: &raw}
	if err := store.AppendReview(card.ID, rec); err != nil {
		return err
	}

	fmt.Printf("Next review on %s (interval %d day(s), ease %.2f, streak %d)\n",
		next.NextReview.Format(time.DateOnly), next.Interval, next.EaseFactor, next.Repetitions)
	return nil
}

func printStats(store *storage.Store, now time.Time) error {
	cards, err := store.AllCards()
	if err != nil {
		return err
	}
	s := stats.Study(cards, now)
	fmt.Printf("Cards:      %d\n", s.Total)
	fmt.Printf("Reviewed:   %d\n", s.Reviewed)
	fmt.Printf("Due:        %d\n", s.Due)
	fmt.Printf("Difficult:  %d\n", s.Difficult)
	fmt.Printf("Mastered:   %d (%d%%)\n", s.Mastered, s.MasteryPercentage)
	fmt.Printf("Avg ease:   %.2f\n", s.AvgEaseFactor)
	return nil
}

func printForecast(store *storage.Store, days int, now time.Time) error {
	cards, err := store.AllCards()
	if err != nil {
		return err
	}
	forecast := stats.UpcomingReviews(cards, days, now)

	dates := make([]string, 0, len(forecast))
	for date := range forecast {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		fmt.Printf("%s  %d\n", date, forecast[date])
	}
	return nil
}

// findCard resolves a full card ID or a unique prefix of one, as
// printed by the listing commands.
func findCard(store *storage.Store, id string) (*domain.Card, error) {
	card, err := store.FindCard(id)
	if err != nil || card != nil {
		return card, err
	}

	cards, err := store.AllCards()
	if err != nil {
		return nil, err
	}
	var match *domain.Card
	for i := range cards {
		if strings.HasPrefix(cards[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("card ID prefix %s is ambiguous", id)
			}
			match = &cards[i]
		}
	}
	return match, nil
}

// categoryForQuality derives the coarse category recorded in history
// when the user supplied a raw quality score.
func categoryForQuality(q float64) domain.ResponseCategory {
	switch {
	case q >= 4:
		return domain.ResponseKnow
	case q >= 3:
		return domain.ResponseDifficult
	default:
		return domain.ResponseUnknown
	}
}

func clampRaw(q float64) int {
	n := int(q + 0.5)
	if n < 0 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
