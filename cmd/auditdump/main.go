package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/CivicGate/civigate/internal/config"
	"github.com/CivicGate/civigate/internal/repository"
)

// auditdump prints audit log entries as JSON lines, newest first.
// Intended for compliance pulls and incident review.
func main() {
	actor := flag.String("actor", "", "filter by actor id")
	limit := flag.Int("limit", 100, "max entries (1-1000)")
	from := flag.String("from", "", "ISO timestamp lower bound (inclusive)")
	to := flag.String("to", "", "ISO timestamp upper bound (inclusive)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := repository.NewDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	repo := repository.NewPostgresAuditRepo(db, cfg.Database.TableAudit)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := repo.List(ctx, *actor, *limit, *from, *to)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			log.Fatalf("Encode failed: %v", err)
		}
	}
	fmt.Fprintf(os.Stderr, "%d entries\n", len(entries))
}
