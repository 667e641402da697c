package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"inventoryclient/internal/api"
	"inventoryclient/internal/core"
	"inventoryclient/pkg/domain"
)

func runSearch(ctx context.Context, root *core.RootStore, cfg Config, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	query := fs.String("query", "", "free-text query")
	resultType := fs.String("type", "ALL", "result type filter")
	parent := fs.String("parent", "", "scope to a parent global id")
	orderBy := fs.String("order-by", "", "sort column")
	order := fs.String("order", "asc", "sort direction")
	pages := fs.Int("pages", 1, "number of pages to print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := root.Search.Fetcher().PerformInitialSearch(ctx, api.SearchParams{
		Query:          *query,
		ResultType:     api.ResultType(strings.ToUpper(*resultType)),
		ParentGlobalID: *parent,
		OrderBy:        *orderBy,
		Order:          *order,
		PageSize:       cfg.PageSize,
	})
	if err != nil {
		return err
	}
	for page := 1; page < *pages; page++ {
		if err := root.Search.Fetcher().LoadNextPage(ctx); err != nil {
			return err
		}
	}
	results := root.Search.Fetcher().Results()
	for _, r := range results {
		marker := " "
		if root.Search.AlwaysFilterOut(r) {
			marker = "x"
		}
		fmt.Printf("%s %s\n", marker, describe(r))
	}
	fmt.Printf("%d of %d hits\n", len(results), root.Search.Fetcher().TotalHits())
	return nil
}

func runTree(ctx context.Context, root *core.RootStore, args []string) error {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	rootID := fs.String("root", "", "global id of the container to expand")
	types := fs.String("types", "", "comma-separated record types to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *rootID == "" {
		return fmt.Errorf("tree: -root is required")
	}
	gid, err := domain.ParseGlobalID(*rootID)
	if err != nil {
		return err
	}

	if err := root.Search.SetSearchView(ctx, core.ViewTree); err != nil {
		return err
	}
	tree := root.Search.Tree()
	if *types != "" {
		var filtered []domain.RecordType
		for _, t := range strings.Split(*types, ",") {
			filtered = append(filtered, domain.RecordType(strings.ToUpper(strings.TrimSpace(t))))
		}
		tree.SetFilteredTypes(filtered)
	}
	if err := tree.SetExpanded(ctx, []domain.GlobalID{gid}); err != nil {
		return err
	}
	rec, ok := root.Factory.Lookup(gid)
	if !ok {
		return fmt.Errorf("tree: %s not in current results", gid)
	}
	fmt.Println(describe(rec))
	for _, child := range tree.VisibleChildren(rec) {
		fmt.Printf("  %s\n", describe(child))
	}
	return nil
}

func runMove(ctx context.Context, root *core.RootStore, args []string) error {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	records := fs.String("records", "", "comma-separated global ids to move")
	target := fs.String("target", "", "destination container global id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *records == "" || *target == "" {
		return fmt.Errorf("move: -records and -target are required")
	}
	ids, err := parseGlobalIDs(*records)
	if err != nil {
		return err
	}
	targetGID, err := domain.ParseGlobalID(*target)
	if err != nil {
		return err
	}

	// The records and the destination must be hydrated before a move; scope
	// a search to pull them into the pool.
	if err := root.Search.Fetcher().PerformInitialSearch(ctx, api.SearchParams{Query: ""}); err != nil {
		return err
	}
	var selected []domain.Record
	for _, id := range ids {
		rec, ok := root.Factory.Lookup(id)
		if !ok {
			return fmt.Errorf("move: %s not found in search results", id)
		}
		selected = append(selected, rec)
	}
	targetRec, ok := root.Factory.Lookup(targetGID)
	if !ok {
		return fmt.Errorf("move: target %s not found in search results", targetGID)
	}
	container, ok := targetRec.(*domain.Container)
	if !ok {
		return fmt.Errorf("move: target %s is not a container", targetGID)
	}

	root.Move.SetIsMoving(true)
	defer root.Move.SetIsMoving(false)
	root.Move.SetSelectedResults(selected)
	if err := root.Move.SetTargetContainer(container); err != nil {
		return err
	}
	result, err := root.Move.MoveSelected(ctx)
	if err != nil {
		return err
	}
	for _, o := range result.Outcomes {
		if o.Err != nil {
			fmt.Printf("FAIL %s: %v\n", o.GlobalID, o.Err)
		} else {
			fmt.Printf("OK   %s\n", o.GlobalID)
		}
	}
	if pf := result.PartialFailure(); pf != nil {
		return pf
	}
	return nil
}

func runBaskets(ctx context.Context, root *core.RootStore, args []string) error {
	fs := flag.NewFlagSet("baskets", flag.ContinueOnError)
	create := fs.String("create", "", "create a basket with this name")
	add := fs.String("add", "", "add items to the basket with this id")
	items := fs.String("items", "", "comma-separated item global ids")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := root.Baskets.GetBaskets(ctx); err != nil {
		return err
	}
	switch {
	case *create != "":
		ids, err := parseGlobalIDs(*items)
		if err != nil {
			return err
		}
		b, err := root.Baskets.CreateBasket(ctx, *create, ids)
		if err != nil {
			return err
		}
		fmt.Printf("created basket %q with %d items\n", b.Name(), b.ItemCount())
		return nil
	case *add != "":
		id, err := strconv.ParseInt(*add, 10, 64)
		if err != nil {
			return fmt.Errorf("baskets: bad basket id %q", *add)
		}
		ids, err := parseGlobalIDs(*items)
		if err != nil {
			return err
		}
		for _, b := range root.Baskets.Baskets() {
			if bid, ok := b.Core().ID(); ok && bid == id {
				if err := root.Baskets.AddItems(ctx, b, ids); err != nil {
					return err
				}
				fmt.Printf("basket %q now tracks %d items\n", b.Name(), b.ItemCount())
				return nil
			}
		}
		return fmt.Errorf("baskets: no basket with id %d", id)
	default:
		for _, b := range root.Baskets.Options() {
			if root.Baskets.IsNewBasketSentinel(b) {
				fmt.Printf("   [new] %s\n", b.Name())
				continue
			}
			id, _ := b.Core().ID()
			fmt.Printf("%6d   %s (%d items)\n", id, b.Name(), b.ItemCount())
		}
		return nil
	}
}
