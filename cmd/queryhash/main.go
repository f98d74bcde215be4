package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledgerline/expense-search/internal/domain/query"
)

// queryhash is a developer diagnostic: it canonicalizes a raw query string
// and prints the normalized form, both hashes and the flattened filters.
func main() {
	asJSON := flag.Bool("json", false, "Print the full canonical query as JSON")
	flag.Parse()

	raw := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(raw) == "" {
		fmt.Fprintln(os.Stderr, "Usage: queryhash [--json] <query string>")
		fmt.Fprintln(os.Stderr, `Example: queryhash 'type:expense category:Travel,Meals amount>1000'`)
		os.Exit(1)
	}

	q, perr := query.BuildSearchQueryJSON(raw)
	if perr != nil {
		fmt.Fprintf(os.Stderr, "Parse error at position %d: %s\n", perr.Position, perr.Reason)
		os.Exit(1)
	}

	if *asJSON {
		out, err := json.MarshalIndent(q, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode query: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("input:       %s\n", raw)
	fmt.Printf("normalized:  %s\n", query.ToQueryString(q))
	fmt.Printf("hash:        %d\n", q.Hash)
	fmt.Printf("recent hash: %d\n", q.RecentSearchHash)

	if len(q.FlatFilters) == 0 {
		fmt.Println("filters:     (none)")
		return
	}

	keys := make([]string, 0, len(q.FlatFilters))
	for k := range q.FlatFilters {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	fmt.Println("filters:")
	for _, k := range keys {
		for _, f := range q.FlatFilters[query.FilterKey(k)] {
			fmt.Printf("  %-12s %-3s %s\n", k, f.Operator, f.Value)
		}
	}
}
