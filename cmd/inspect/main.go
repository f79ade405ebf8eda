package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"mimicbot/pkg/logger"
	"mimicbot/pkg/store"
)

func main() {
	var dbPath string
	var prefix string
	var limit int
	flag.StringVar(&dbPath, "db", "", "corpus DB path to inspect")
	flag.StringVar(&prefix, "prefix", "rec:", "key prefix to list")
	flag.IntVar(&limit, "limit", 50, "max keys to print")
	flag.Parse()
	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "--db required")
		os.Exit(2)
	}
	logger.Init("error")
	if err := store.Open(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer store.Close()

	n, err := store.CountRecords()
	if err != nil {
		fmt.Fprintf(os.Stderr, "count: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("records: %s, on disk: %s\n", humanize.Comma(n), humanize.Bytes(store.DBSizeBytes()))

	keys, err := store.ListKeys(prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list keys: %v\n", err)
		os.Exit(1)
	}
	for i, k := range keys {
		if i >= limit {
			fmt.Printf("... %d more\n", len(keys)-limit)
			break
		}
		fmt.Println(k)
	}
}
