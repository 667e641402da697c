// Command inventory-cli exercises the client-side inventory model against a
// live server: paginated search, tree browsing, bulk moves, and basket
// management from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"inventoryclient/internal/core"
	"inventoryclient/internal/infra/cache/sqlite"
	"inventoryclient/internal/logging"
	"inventoryclient/pkg/domain"
)

const usage = `usage: inventory-cli [-config file] <command> [args]

commands:
  search  -query Q [-type ALL|SAMPLE|CONTAINER|SUBSAMPLE|TEMPLATE] [-parent GID] [-pages N]
  tree    -root GID [-types T1,T2]
  move    -records GID1,GID2 -target GID
  baskets [-create NAME -items GID1,GID2] [-add BASKETID -items GID1,GID2]
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "inventory-cli:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("inventory-cli", flag.ContinueOnError)
	configPath := global.String("config", "", "path to YAML config (default inventory-cli.yaml if present)")
	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	explicit := *configPath != ""
	path := *configPath
	if path == "" {
		path = "inventory-cli.yaml"
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()

	rootCfg := core.RootConfig{
		BaseURL: cfg.ServerURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
		Logger:  log,
	}
	if cfg.MetricsEnabled {
		rec, err := core.NewPrometheusMetricsRecorder(prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		rootCfg.Metrics = rec
	}
	if cfg.CachePath != "" {
		cache, err := sqlite.New(cfg.CachePath)
		if err != nil {
			return fmt.Errorf("open record cache: %w", err)
		}
		rootCfg.Cache = cache
	}
	root, err := core.NewRootStore(rootCfg)
	if err != nil {
		return err
	}
	defer func() { _ = root.Close() }()

	ctx := context.Background()
	switch rest[0] {
	case "search":
		return runSearch(ctx, root, cfg, rest[1:])
	case "tree":
		return runTree(ctx, root, rest[1:])
	case "move":
		return runMove(ctx, root, rest[1:])
	case "baskets":
		return runBaskets(ctx, root, rest[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func parseGlobalIDs(csv string) ([]domain.GlobalID, error) {
	var ids []domain.GlobalID
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := domain.ParseGlobalID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func describe(r domain.Record) string {
	gid, _ := r.Core().GlobalID()
	label := string(r.Type())
	if c, ok := r.(*domain.Container); ok {
		label = fmt.Sprintf("%s/%s", label, c.ContainerType())
	}
	return fmt.Sprintf("%-8s %-16s %s", gid, label, r.Core().Name())
}
