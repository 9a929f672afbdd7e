// Command havenctl opens the havenlist state container from environment
// configuration, runs a single operation and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"havenlist/internal/core"
	"havenlist/internal/platform/config"
	"havenlist/internal/platform/logger"
	"havenlist/internal/platform/telemetry"
	"havenlist/pkg/domain"
)

var (
	exitFunc = os.Exit
	loadEnv  = config.FromEnv
)

const usage = `usage: havenctl [-metrics] <command> [flags]

commands:
  homes                       list homes
  home -id ID                 show one home with its donations and visits
  donations [-home ID]        list donations
  visits [-home ID]           list visits
  donate -home ID -amount N   record a donation
  visit -home ID -when DATE   schedule a visit
  review -home ID -rating N   add a review
  add-home -name NAME         add a home
  update-home -id ID          update a home
  delete-home -id ID          delete a home
`

func main() {
	exitFunc(cli(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := flag.NewFlagSet("havenctl", flag.ContinueOnError)
	root.SetOutput(stderr)
	root.Usage = func() { _, _ = fmt.Fprint(stderr, usage) }
	showMetrics := root.Bool("metrics", false, "print operation metrics to stderr on exit")
	if err := root.Parse(args); err != nil {
		return 2
	}
	if root.NArg() == 0 {
		root.Usage()
		return 2
	}

	cfg, err := loadEnv()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	log := logger.New(stderr, cfg.Log)

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	reg := prometheus.NewRegistry()
	c, err := core.OpenFromConfig(ctx, cfg, reg, core.WithLogger(log))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "open: %v\n", err)
		return 1
	}
	defer func() { _ = c.Close() }()

	code := run(core.WithAccessor(ctx, c), root.Arg(0), root.Args()[1:], stdout, stderr)
	if *showMetrics {
		if err := writeMetrics(stderr, reg); err != nil {
			log.Warn("write metrics", "error", err)
		}
	}
	return code
}

func run(ctx context.Context, cmd string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var handler func() (any, error)

	switch cmd {
	case "homes":
		handler = func() (any, error) { return core.AccessorFrom(ctx).Homes(), nil }
	case "home":
		id := fs.String("id", "", "home id")
		handler = func() (any, error) {
			c, ok := core.AccessorFrom(ctx).(*core.Container)
			if !ok {
				return nil, errors.New("home lookup needs a container")
			}
			home, found := c.Home(*id)
			if !found {
				return nil, fmt.Errorf("home %q not found", *id)
			}
			return map[string]any{
				"home":      home,
				"donations": c.DonationsForHome(*id),
				"visits":    c.VisitsForHome(*id),
			}, nil
		}
	case "donations":
		home := fs.String("home", "", "only donations for this home")
		handler = func() (any, error) {
			return filter(core.AccessorFrom(ctx).Donations(), *home, func(d domain.Donation) string { return d.HomeID }), nil
		}
	case "visits":
		home := fs.String("home", "", "only visits for this home")
		handler = func() (any, error) {
			return filter(core.AccessorFrom(ctx).Visits(), *home, func(v domain.Visit) string { return v.HomeID }), nil
		}
	case "donate":
		var f domain.DonationFields
		fs.StringVar(&f.HomeID, "home", "", "home id")
		fs.Float64Var(&f.Amount, "amount", 0, "donation amount")
		fs.StringVar(&f.Currency, "currency", "", "currency code")
		fs.StringVar(&f.DonorName, "donor", "", "donor name")
		fs.StringVar(&f.DonorEmail, "email", "", "donor email")
		fs.StringVar(&f.Message, "message", "", "message to the home")
		fs.BoolVar(&f.Anonymous, "anonymous", false, "hide the donor name")
		handler = func() (any, error) { return core.AccessorFrom(ctx).AddDonation(ctx, f) }
	case "visit":
		var f domain.VisitFields
		fs.StringVar(&f.HomeID, "home", "", "home id")
		fs.StringVar(&f.ScheduledFor, "when", "", "scheduled date")
		fs.StringVar(&f.VisitorName, "name", "", "visitor name")
		fs.StringVar(&f.VisitorEmail, "email", "", "visitor email")
		fs.StringVar(&f.VisitorPhone, "phone", "", "visitor phone")
		fs.IntVar(&f.GroupSize, "group", 0, "group size")
		fs.StringVar(&f.Purpose, "purpose", "", "purpose of the visit")
		handler = func() (any, error) { return core.AccessorFrom(ctx).AddVisit(ctx, f) }
	case "review":
		var f domain.ReviewFields
		home := fs.String("home", "", "home id")
		fs.IntVar(&f.Rating, "rating", 0, "rating")
		fs.StringVar(&f.Comment, "comment", "", "comment")
		fs.StringVar(&f.ReviewerName, "name", "", "reviewer name")
		handler = func() (any, error) {
			r, attached, err := core.AccessorFrom(ctx).AddReview(ctx, *home, f)
			out := map[string]any{"attached": attached}
			if attached {
				out["review"] = r
			}
			return out, err
		}
	case "add-home":
		var f domain.HomeFields
		var needs string
		fs.StringVar(&f.Name, "name", "", "home name")
		fs.StringVar(&f.Location, "location", "", "location")
		fs.StringVar(&f.Description, "description", "", "description")
		fs.StringVar(&f.Image, "image", "", "image url")
		fs.StringVar(&f.VisitationHours, "hours", "", "visitation hours")
		fs.StringVar(&f.ContactInfo.Phone, "phone", "", "contact phone")
		fs.StringVar(&f.ContactInfo.Email, "email", "", "contact email")
		fs.StringVar(&needs, "needs", "", "comma separated needs")
		handler = func() (any, error) {
			f.Needs = splitList(needs)
			return core.AccessorFrom(ctx).AddHome(ctx, f)
		}
	case "update-home":
		id := fs.String("id", "", "home id")
		set := map[string]*string{}
		for _, name := range []string{"name", "location", "description", "image", "hours", "needs"} {
			set[name] = fs.String(name, "", "new "+name)
		}
		handler = func() (any, error) {
			patch := domain.HomePatch{}
			fs.Visit(func(f *flag.Flag) {
				v := set[f.Name]
				switch f.Name {
				case "name":
					patch.Name = v
				case "location":
					patch.Location = v
				case "description":
					patch.Description = v
				case "image":
					patch.Image = v
				case "hours":
					patch.VisitationHours = v
				case "needs":
					needs := splitList(*v)
					patch.Needs = &needs
				}
			})
			matched, err := core.AccessorFrom(ctx).UpdateHome(ctx, *id, patch)
			return map[string]any{"id": *id, "matched": matched}, err
		}
	case "delete-home":
		id := fs.String("id", "", "home id")
		handler = func() (any, error) {
			removed, err := core.AccessorFrom(ctx).DeleteHome(ctx, *id)
			return map[string]any{"id": *id, "removed": removed}, err
		}
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n%s", cmd, usage)
		return 2
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	out, err := handler()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		_, _ = fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	return 0
}

func filter[T any](items []T, homeID string, key func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if homeID == "" || key(it) == homeID {
			out = append(out, it)
		}
	}
	return out
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
