// Package logview renders snapshots as structured log records for headless runs.
package logview

import (
	"log/slog"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
)

// Renderer logs one info record per new or re-spotted spot and a debug
// summary of every snapshot. It implements pipeline.Renderer.
type Renderer struct {
	logger *slog.Logger
	seen   map[spotKey]domain.ZuluTime
}

type spotKey struct {
	source domain.Source
	call   string
}

// NewRenderer creates a Renderer.
func NewRenderer(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logger, seen: make(map[spotKey]domain.ZuluTime)}
}

func (r *Renderer) Render(snap domain.Snapshot) {
	current := make(map[spotKey]domain.ZuluTime, len(snap.RBN)+len(snap.Sked))
	for _, views := range [][]domain.SpotView{snap.RBN, snap.Sked} {
		for _, v := range views {
			key := spotKey{source: v.Source, call: v.Call}
			current[key] = v.Time
			if prev, ok := r.seen[key]; ok && prev == v.Time {
				continue
			}
			r.logger.Info("spot",
				"source", v.Source.String(),
				"time", v.Time.String(),
				"call", v.Call,
				"skcc", v.SKCC(),
				"name", v.Name,
				"qth", v.Location,
				"detail", v.Detail(),
				"need", v.Need,
				"age_minutes", v.AgeMinutes,
			)
		}
	}
	r.seen = current

	r.logger.Debug("snapshot",
		"rbn", len(snap.RBN),
		"sked", len(snap.Sked),
		"feedback", snap.Feedback,
		"updated_at", snap.UpdatedAt,
	)
}
