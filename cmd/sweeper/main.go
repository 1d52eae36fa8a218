// The sweeper marks pending invitations whose deadline has passed as
// expired. Acceptance handles expiry on its own, so the sweeper only keeps
// listings and reporting honest; it can be down without breaking anything.
package main

import (
	"flag"
	"log"
	"time"

	"orghub/internal/config"
	"orghub/internal/db"
	"orghub/internal/store"
)

func main() {
	interval := flag.Duration("interval", 10*time.Minute, "time between sweeps")
	batch := flag.Int("batch", 500, "max invitations marked per sweep")
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg := config.Load()
	gdb := db.Connect(cfg.DSN)
	invitations := store.InvitationStore{DB: gdb}

	if *once {
		sweep(invitations, *batch)
		return
	}

	log.Printf("sweeper running interval=%s batch=%d", *interval, *batch)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sweep(invitations, *batch)
	for range ticker.C {
		sweep(invitations, *batch)
	}
}

func sweep(invitations store.InvitationStore, batch int) {
	pending, err := invitations.ListPendingExpired(batch)
	if err != nil {
		log.Printf("error: listing expired invitations: %v", err)
		return
	}

	marked := 0
	for i := range pending {
		changed, err := invitations.MarkExpiredIfNeeded(&pending[i])
		if err != nil {
			log.Printf("error: marking invitation %d expired: %v", pending[i].ID, err)
			continue
		}
		if changed {
			marked++
		}
	}
	if marked > 0 {
		log.Printf("sweep complete marked=%d", marked)
	}
}
