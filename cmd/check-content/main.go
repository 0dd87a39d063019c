// Package main validates attack catalog and encounter content files.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/cory-johannsen/apprentice/internal/game/combat"
)

func main() {
	attacksFile := flag.String("attacks", "content/attacks.yaml", "path to attack catalog YAML")
	encountersDir := flag.String("encounters", "content/encounters", "path to encounter YAML directory")
	flag.Parse()

	if *attacksFile == "" && *encountersDir == "" {
		fmt.Fprintln(os.Stderr, "usage: check-content [-attacks <file>] [-encounters <dir>]")
		os.Exit(1)
	}

	start := time.Now()
	if *attacksFile != "" {
		catalog, err := combat.LoadCatalogFile(*attacksFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		for _, a := range catalog.List() {
			fmt.Printf("attack    %-14s %-14s %3d\n", a.ID, a.Name, a.Damage)
		}
	}
	if *encountersDir != "" {
		encounters, err := combat.LoadEncounters(*encountersDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		ids := make([]string, 0, len(encounters))
		for id := range encounters {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			enc := encounters[id]
			fmt.Printf("encounter %-14s %q player=%d enemies=%d\n", id, enc.Title, enc.PlayerMaxHealth, len(enc.Enemies))
		}
	}
	fmt.Printf("content ok in %s\n", time.Since(start).Round(time.Millisecond))
}
