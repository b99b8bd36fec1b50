// Package sweep runs the two periodic background jobs the protocol layer
// needs: rotating the published commitment and evicting finished games
// past their grace period. Grounded on the teacher's
// internal/mempool.Poller.Run, which drives its own housekeeping off a
// pair of independent time.Tickers inside one select loop.
package sweep

import (
	"context"
	"log"
	"time"

	"github.com/paddla/game-core/internal/events"
	"github.com/paddla/game-core/internal/protocol"
)

// CommitmentArchiver persists a commitment at the moment it is published,
// independent of the CommitmentSlot's in-memory state. internal/store
// implements this; a nil archiver is a valid no-op.
type CommitmentArchiver interface {
	RecordCommitmentRotation(commitment string, issuedAt time.Time)
}

// Sweeper periodically rotates the commitment slot and evicts expired
// registry entries.
type Sweeper struct {
	slot     *protocol.CommitmentSlot
	registry *protocol.Registry
	eventMgr *events.Manager
	archiver CommitmentArchiver

	rotationPeriod time.Duration
	registryTick   time.Duration
	graceTTL       time.Duration
}

// New builds a Sweeper. eventMgr and archiver may be nil.
func New(slot *protocol.CommitmentSlot, registry *protocol.Registry, eventMgr *events.Manager, archiver CommitmentArchiver, rotationPeriod, registryTick, graceTTL time.Duration) *Sweeper {
	return &Sweeper{
		slot:           slot,
		registry:       registry,
		eventMgr:       eventMgr,
		archiver:       archiver,
		rotationPeriod: rotationPeriod,
		registryTick:   registryTick,
		graceTTL:       graceTTL,
	}
}

// Run blocks, rotating and sweeping on their respective tickers until ctx
// is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	log.Println("[sweep] starting commitment rotation and registry sweeper")

	rotateTicker := time.NewTicker(s.rotationPeriod)
	defer rotateTicker.Stop()

	sweepTicker := time.NewTicker(s.registryTick)
	defer sweepTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[sweep] stopping")
			return
		case <-rotateTicker.C:
			if err := s.slot.Rotate(s.graceTTL); err != nil {
				log.Printf("[sweep] commitment rotation failed: %v", err)
				continue
			}
			cm := s.slot.Current()
			if s.archiver != nil {
				s.archiver.RecordCommitmentRotation(cm.Value, cm.IssuedAt)
			}
			log.Printf("[sweep] rotated commitment, new value published")
		case <-sweepTicker.C:
			s.slot.ExpirePrevious()
			evicted := s.registry.Sweep()
			if len(evicted) > 0 {
				log.Printf("[sweep] evicted %d expired game(s)", len(evicted))
				if s.eventMgr != nil {
					for _, id := range evicted {
						s.eventMgr.Forget(id)
					}
				}
			}
		}
	}
}
