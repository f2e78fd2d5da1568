package products

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"agromandi/store"
)

// StartExpirySweep periodically expires active products older than
// PRODUCT_TTL_DAYS (default 30). A TTL of 0 disables the sweep.
// Runs until ctx is cancelled.
func StartExpirySweep(ctx context.Context) {
	ttlDays := 30
	if v := os.Getenv("PRODUCT_TTL_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			ttlDays = n
		}
	}
	if ttlDays <= 0 {
		log.Println("products: expiry sweep disabled")
		return
	}

	interval := time.Hour
	if v := os.Getenv("EXPIRY_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -ttlDays)
			n, err := store.DB.ExpireProductsBefore(ctx, cutoff)
			if err != nil {
				log.Printf("products: expiry sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("products: expired %d stale listings", n)
			}
		}
	}
}
