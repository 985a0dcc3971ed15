// Command admin is a read-only console over the booking ledger and the
// analytics log.
//
//	admin dashboard | bookings | events   read the configured store
//	admin tail [-replay]                  follow events on NATS Streaming
//	admin deck [-seed N]                  print a generated deck plan
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"meridian/internal/config"
	"meridian/internal/deck"
	"meridian/internal/logger"
	"meridian/internal/messaging"
	"meridian/internal/models"
	"meridian/internal/repository"
	"meridian/internal/service"
	"meridian/internal/store"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin <dashboard|bookings|events|tail|deck> [flags]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "dashboard", "bookings", "events":
		err = runReport(cfg, cmd, args)
	case "tail":
		err = runTail(cfg, args)
	case "deck":
		err = runDeck(args)
	default:
		usage()
	}

	if err != nil {
		logger.Fatal("Command failed", "command", cmd, "error", err)
	}
}

func openAdmin(cfg *config.Config) (*service.AdminService, store.Store, error) {
	base, err := store.Open(cfg.Store.Backend, cfg.Valkey, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	st := store.WithPrefix(base, cfg.Store.KeyPrefix)
	repos := repository.NewRepositories(st)
	return service.NewAdminService(repos.Bookings, repos.Events), st, nil
}

func runReport(cfg *config.Config, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print raw JSON instead of a table")
	limit := fs.Int("limit", 20, "Maximum rows to print (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.Store.Backend == store.BackendMemory {
		slog.Warn("Memory store selected; it only holds data written by this process")
	}

	admin, st, err := openAdmin(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out any
	switch cmd {
	case "dashboard":
		out = admin.Dashboard(ctx)
	case "bookings":
		out = truncate(admin.Bookings(ctx), *limit)
	case "events":
		out = truncate(admin.Events(ctx), *limit)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	switch v := out.(type) {
	case service.Dashboard:
		fmt.Fprintf(w, "Revenue\t$%d\n", v.Revenue)
		fmt.Fprintf(w, "Bookings\t%d\n", v.Bookings)
		fmt.Fprintf(w, "Passengers\t%d\n", v.Passengers)
		fmt.Fprintf(w, "Events\t%d\n", v.Events)
	case []models.Booking:
		fmt.Fprintln(w, "ID\tDATE\tVOYAGE\tGUEST\tPACKAGE\tEXCURSIONS\tTOTAL")
		for _, b := range v {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t$%d\n",
				b.ID, b.Date.Format(time.DateTime), b.Voyage.Title, b.Guest.Email, b.Package, b.Excursions, b.TotalPaid)
		}
	case []models.AnalyticsEvent:
		fmt.Fprintln(w, "TIME\tEVENT\tPAYLOAD")
		for _, e := range v {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Timestamp.Format(time.TimeOnly), e.Name, payloadString(e.Payload))
		}
	}
	return nil
}

func truncate[T any](list []T, limit int) []T {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

func payloadString(p map[string]any) string {
	if len(p) == 0 {
		return "{}"
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%v", p)
	}
	return string(b)
}

func runTail(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tail", flag.ExitOnError)
	replay := fs.Bool("replay", false, "Deliver the full retained history before new events")
	subject := fs.String("subject", cfg.NATS.Subject, "NATS Streaming subject")
	if err := fs.Parse(args); err != nil {
		return err
	}

	natsCfg := cfg.NATS
	natsCfg.ClientID = "meridian-admin"
	client, err := messaging.NewNATSClient(natsCfg)
	if err != nil {
		return err
	}
	defer client.Close()

	sub, err := client.Subscribe(*subject, *replay, func(e models.AnalyticsEvent) {
		fmt.Printf("%s  %-18s %s\n", e.Timestamp.Format(time.TimeOnly), e.Name, payloadString(e.Payload))
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Stopped tailing events", "subject", *subject)
	return nil
}

func runDeck(args []string) error {
	fs := flag.NewFlagSet("deck", flag.ExitOnError)
	seed := fs.Int64("seed", 0, "Occupancy seed (0 = current time)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	plan := deck.NewPlan(deck.Generate(rand.New(rand.NewSource(*seed))))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Seed %d, %d of %d cabins available\n\n", *seed, plan.Available(), len(plan.Cabins()))
	fmt.Fprintln(w, "CABIN\tTYPE\tPRICE\tBOOKED")
	for _, c := range plan.Cabins() {
		fmt.Fprintf(w, "%s\t%s\t$%d\t%t\n", c.ID, c.Type, c.Price, c.IsBooked)
	}
	return nil
}
