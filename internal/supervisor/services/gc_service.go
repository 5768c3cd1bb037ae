// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// GCRunner is the slice of the document store the GC loop needs.
// *store.Store satisfies it.
type GCRunner interface {
	RunValueLogGC(discardRatio float64) error
}

// StoreGCService periodically reclaims Badger value-log space. Badger does
// not garbage-collect on its own; without this loop the value log grows
// unbounded under update-heavy workloads like progress writes.
type StoreGCService struct {
	store        GCRunner
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
}

// NewStoreGCService creates the GC loop. Non-positive intervals default to
// 10 minutes; out-of-range ratios default to 0.5.
func NewStoreGCService(st GCRunner, interval time.Duration, discardRatio float64, logger zerolog.Logger) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = 0.5
	}
	return &StoreGCService{
		store:        st,
		interval:     interval,
		discardRatio: discardRatio,
		logger:       logger.With().Str("component", "store-gc").Logger(),
	}
}

// Serve implements suture.Service. A failed GC round is logged and retried on
// the next tick; the loop only exits with the context.
func (g *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.store.RunValueLogGC(g.discardRatio); err != nil {
				g.logger.Warn().Err(err).Msg("value-log gc round failed")
				continue
			}
			g.logger.Debug().Msg("value-log gc round complete")
		}
	}
}

// String identifies the service in suture's event log.
func (g *StoreGCService) String() string {
	return "store-gc"
}
