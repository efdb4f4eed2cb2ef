package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
)

type sender interface {
	Send(msg tea.Msg)
}

// Renderer forwards snapshots to a running program. Render never blocks:
// a snapshot that has not been delivered yet is replaced by the newer one.
// It implements pipeline.Renderer.
type Renderer struct {
	program sender
	pending chan domain.Snapshot
}

// NewRenderer creates a Renderer for p. Run must be started for snapshots to
// reach the program.
func NewRenderer(p *tea.Program) *Renderer {
	return newRenderer(p)
}

func newRenderer(s sender) *Renderer {
	return &Renderer{program: s, pending: make(chan domain.Snapshot, 1)}
}

func (r *Renderer) Render(snap domain.Snapshot) {
	for {
		select {
		case r.pending <- snap:
			return
		default:
		}
		select {
		case <-r.pending:
		default:
		}
	}
}

// Run delivers pending snapshots until the context is cancelled.
func (r *Renderer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-r.pending:
			r.program.Send(snapshotMsg(snap))
		}
	}
}
