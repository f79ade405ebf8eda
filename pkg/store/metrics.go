package store

import (
	"io/fs"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	inserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mimicbot_store_inserts_total",
		Help: "Corpus records inserted.",
	})
	insertDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mimicbot_store_insert_duplicates_total",
		Help: "Inserts rejected because the event id already existed.",
	})
	deletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mimicbot_store_deletes_total",
		Help: "Corpus records deleted.",
	})
	deleteNoops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mimicbot_store_delete_noops_total",
		Help: "Deletes for event ids that were already absent.",
	})
	reads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mimicbot_store_reads_total",
		Help: "Corpus list reads (per author or global).",
	})
)

// DBSizeBytes returns the best-effort on-disk size of the DB directory.
func DBSizeBytes() uint64 {
	if dbPath == "" {
		return 0
	}
	var total uint64
	_ = filepath.WalkDir(dbPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += uint64(fi.Size())
		}
		return nil
	})
	return total
}
