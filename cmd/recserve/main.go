// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

// Package main is the recserve command line interface.
//
// recserve exposes every serving layer API operation as a subcommand, for
// scripting and for poking at a serving layer during development:
//
//	recserve ready
//	recserve recommend -user 42 -n 5
//	recserve recommend-anon -prefs 325=2.5,98
//	recserve estimate -user 7 -items 1,2,3
//	recserve ingest < preferences.csv
//	recserve refresh
//
// Configuration is loaded via Koanf v2 layers (defaults, then an optional
// config.yaml, then SERVING_* / LOGGING_* environment variables):
//
//	export SERVING_HOST=localhost
//	export SERVING_PORT=8080
//	recserve users
//
// Results are printed to stdout as JSON; diagnostics go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/recserve/internal/config"
	"github.com/tomtom215/recserve/internal/logging"
	"github.com/tomtom215/recserve/serving"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "recserve:", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	var client serving.ClientInterface = serving.NewClient(serving.Config{
		Host:              cfg.Serving.Host,
		Port:              cfg.Serving.Port,
		Timeout:           cfg.Serving.Timeout,
		RequestsPerSecond: cfg.Serving.RequestsPerSecond,
		MaxRetries:        cfg.Serving.MaxRetries,
	})
	if cfg.Serving.BreakerEnabled {
		client = serving.NewBreakerClient(client, "serving-api")
	}

	ctx := context.Background()
	if err := run(ctx, client, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, serving.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "recserve: not found:", err)
			os.Exit(4)
		}
		fmt.Fprintln(os.Stderr, "recserve:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: recserve <command> [flags]

Commands:
  ready                              check whether the serving layer has a model loaded
  recommend       -user N            recommend items to a user
  recommend-many  -users N,N,...     recommend items to a group of users
  recommend-anon  -prefs I[=S],...   recommend to an anonymous user
  popular                            most popular items overall
  because         -user N -item N    explain a recommendation
  similar         -items N,N,...     items most similar to the given items
  similarity      -to N -items ...   similarity of items to one item
  estimate        -user N -items ... estimate association strengths
  estimate-anon   -to N -prefs ...   estimate for an anonymous user
  add-pref        -user N -item N    add to a user-item association
  remove-pref     -user N -item N    remove an item from a user's known items
  tag-user        -user N -tag T     tag a user
  tag-item        -item N -tag T     tag an item
  ingest                             bulk-load CSV preferences from stdin
  refresh                            ask the serving layer to rebuild its model
  users                              list all user IDs in the model
  items                              list all item IDs in the model

Query flags: -n (how many), -known (consider known items), -rescorer (repeatable)
`)
}

// run dispatches one subcommand against the client.
//
//nolint:gocyclo // Flat subcommand dispatch; each arm is trivial
func run(ctx context.Context, client serving.ClientInterface, command string, args []string) error {
	switch command {
	case "ready":
		ready, err := client.IsReady(ctx)
		if err != nil {
			return err
		}
		fmt.Println(ready)
		return nil

	case "recommend":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		user := fs.Int64("user", 0, "user ID")
		opts := queryFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		items, err := client.Recommend(ctx, *user, opts())
		if err != nil {
			return err
		}
		return printJSON(items)

	case "recommend-many":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		users := fs.String("users", "", "comma-separated user IDs")
		opts := queryFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		ids, err := parseIDList(*users)
		if err != nil {
			return err
		}
		items, err := client.RecommendToMany(ctx, ids, opts())
		if err != nil {
			return err
		}
		return printJSON(items)

	case "recommend-anon":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		prefs := fs.String("prefs", "", "comma-separated itemID[=strength] pairs")
		opts := queryFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		list, err := parsePrefList(*prefs)
		if err != nil {
			return err
		}
		items, err := client.RecommendToAnonymous(ctx, list, opts())
		if err != nil {
			return err
		}
		return printJSON(items)

	case "popular":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		opts := queryFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		items, err := client.MostPopularItems(ctx, opts())
		if err != nil {
			return err
		}
		return printJSON(items)

	case "because":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		user := fs.Int64("user", 0, "user ID")
		item := fs.Int64("item", 0, "item ID")
		howMany := fs.Int("n", 0, "maximum results")
		if err := fs.Parse(args); err != nil {
			return err
		}
		items, err := client.Because(ctx, *user, *item, *howMany)
		if err != nil {
			return err
		}
		return printJSON(items)

	case "similar":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		items := fs.String("items", "", "comma-separated item IDs")
		opts := queryFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		ids, err := parseIDList(*items)
		if err != nil {
			return err
		}
		result, err := client.MostSimilarItems(ctx, ids, opts())
		if err != nil {
			return err
		}
		return printJSON(result)

	case "similarity":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		to := fs.Int64("to", 0, "target item ID")
		items := fs.String("items", "", "comma-separated item IDs")
		if err := fs.Parse(args); err != nil {
			return err
		}
		ids, err := parseIDList(*items)
		if err != nil {
			return err
		}
		values, err := client.SimilarityToItem(ctx, *to, ids)
		if err != nil {
			return err
		}
		return printJSON(values)

	case "estimate":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		user := fs.Int64("user", 0, "user ID")
		items := fs.String("items", "", "comma-separated item IDs")
		if err := fs.Parse(args); err != nil {
			return err
		}
		ids, err := parseIDList(*items)
		if err != nil {
			return err
		}
		values, err := client.Estimate(ctx, *user, ids)
		if err != nil {
			return err
		}
		return printJSON(values)

	case "estimate-anon":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		to := fs.Int64("to", 0, "target item ID")
		prefs := fs.String("prefs", "", "comma-separated itemID[=strength] pairs")
		if err := fs.Parse(args); err != nil {
			return err
		}
		list, err := parsePrefList(*prefs)
		if err != nil {
			return err
		}
		value, err := client.EstimateForAnonymous(ctx, *to, list)
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil

	case "add-pref":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		user := fs.Int64("user", 0, "user ID")
		item := fs.Int64("item", 0, "item ID")
		strength := fs.Float64("strength", 0, "association strength (omit for server default)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		var s *float64
		if flagWasSet(fs, "strength") {
			s = strength
		}
		return client.AddPreference(ctx, *user, *item, s)

	case "remove-pref":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		user := fs.Int64("user", 0, "user ID")
		item := fs.Int64("item", 0, "item ID")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return client.RemovePreference(ctx, *user, *item)

	case "tag-user":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		user := fs.Int64("user", 0, "user ID")
		tag := fs.String("tag", "", "tag value")
		strength := fs.Float64("strength", 1, "association strength")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return client.SetUserTag(ctx, *user, *tag, *strength)

	case "tag-item":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		item := fs.Int64("item", 0, "item ID")
		tag := fs.String("tag", "", "tag value")
		strength := fs.Float64("strength", 1, "association strength")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return client.SetItemTag(ctx, *item, *tag, *strength)

	case "ingest":
		prefs, err := readPreferences(os.Stdin)
		if err != nil {
			return err
		}
		logging.Info().Int("preferences", len(prefs)).Msg("Ingesting preferences")
		return client.Ingest(ctx, prefs)

	case "refresh":
		return client.Refresh(ctx)

	case "users":
		ids, err := client.AllUserIDs(ctx)
		if err != nil {
			return err
		}
		return printJSON(ids)

	case "items":
		ids, err := client.AllItemIDs(ctx)
		if err != nil {
			return err
		}
		return printJSON(ids)

	case "help", "-h", "--help":
		usage()
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// queryFlags registers the shared query option flags on fs and returns a
// closure producing the QueryOptions after parsing. Nil is returned when no
// query flag was set, leaving the server defaults in effect.
func queryFlags(fs *flag.FlagSet) func() *serving.QueryOptions {
	howMany := fs.Int("n", 0, "maximum results (0 = server default)")
	known := fs.Bool("known", false, "consider the user's known items as candidates")
	var rescorer stringList
	fs.Var(&rescorer, "rescorer", "rescorer parameter (repeatable, order-significant)")

	return func() *serving.QueryOptions {
		if *howMany == 0 && !*known && len(rescorer) == 0 {
			return nil
		}
		return &serving.QueryOptions{
			HowMany:            *howMany,
			ConsiderKnownItems: *known,
			RescorerParams:     rescorer,
		}
	}
}

// stringList collects repeatable string flags in order.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// flagWasSet reports whether a flag was explicitly provided.
func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// parseIDList parses a comma-separated list of numeric identifiers.
func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("no IDs given")
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ID %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parsePrefList parses comma-separated "itemID[=strength]" pairs.
func parsePrefList(s string) ([]serving.ItemStrength, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("no preferences given")
	}
	parts := strings.Split(s, ",")
	prefs := make([]serving.ItemStrength, 0, len(parts))
	for _, p := range parts {
		itemPart, strengthPart, hasStrength := strings.Cut(strings.TrimSpace(p), "=")
		id, err := strconv.ParseInt(itemPart, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item ID %q: %w", itemPart, err)
		}
		pref := serving.ItemStrength{ItemID: id}
		if hasStrength {
			v, err := strconv.ParseFloat(strengthPart, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid strength %q: %w", strengthPart, err)
			}
			pref.Strength = &v
		}
		prefs = append(prefs, pref)
	}
	return prefs, nil
}

// readPreferences reads CSV preference rows "userID,itemID[,strength]" from r.
// Blank lines are skipped.
func readPreferences(r io.Reader) ([]serving.Preference, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var prefs []serving.Preference
	for i, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("line %d: expected userID,itemID[,strength], got %q", i+1, line)
		}
		userID, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid user ID: %w", i+1, err)
		}
		itemID, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid item ID: %w", i+1, err)
		}
		pref := serving.Preference{UserID: userID, ItemID: itemID}
		if len(fields) == 3 {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid strength: %w", i+1, err)
			}
			pref.Strength = &v
		}
		prefs = append(prefs, pref)
	}
	return prefs, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
