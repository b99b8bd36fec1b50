package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/paddla/game-core/internal/api"
	"github.com/paddla/game-core/internal/config"
	"github.com/paddla/game-core/internal/events"
	"github.com/paddla/game-core/internal/protocol"
	"github.com/paddla/game-core/internal/store"
	"github.com/paddla/game-core/internal/sweep"
)

func main() {
	log.Println("Starting PADDLA game core...")

	// ─── Persistence (optional) ──────────────────────────────────────
	// DATABASE_URL is optional: the service runs with in-memory-only
	// replay audits when it's unset, same degrade-gracefully posture as
	// the teacher's cmd/engine/main.go.
	var recorder protocol.AuditRecorder
	var pgStore *store.PostgresStore
	if dbURL := config.GetEnvOrDefault("DATABASE_URL", ""); dbURL != "" {
		conn, err := store.Connect(dbURL)
		if err != nil {
			log.Printf("warning: failed to connect to PostgreSQL, continuing without replay audit persistence: %v", err)
		} else {
			pgStore = conn
			defer pgStore.Close()
			if err := pgStore.InitSchema(); err != nil {
				log.Printf("warning: schema init failed: %v", err)
			}
			recorder = pgStore
		}
	} else {
		log.Println("DATABASE_URL not set; replay audits will not be persisted")
	}

	rotationPeriod, err := time.ParseDuration(config.GetEnvOrDefault("ROTATION_INTERVAL", config.RotationInterval))
	if err != nil {
		log.Fatalf("invalid ROTATION_INTERVAL: %v", err)
	}
	graceTTL, err := time.ParseDuration(config.GetEnvOrDefault("GAME_GRACE_TTL", config.GameGraceTTL))
	if err != nil {
		log.Fatalf("invalid GAME_GRACE_TTL: %v", err)
	}

	slot, err := protocol.NewCommitmentSlot(rotationPeriod)
	if err != nil {
		log.Fatalf("failed to initialize commitment slot: %v", err)
	}
	registry := protocol.NewRegistry(slot, graceTTL, recorder)

	var archiver sweep.CommitmentArchiver
	if pgStore != nil {
		archiver = pgStore
		cm := slot.Current()
		pgStore.RecordCommitmentRotation(cm.Value, cm.IssuedAt)
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	eventMgr := events.NewManager(500, func(e events.GameEvent) {
		if payload := marshalEvent(e); payload != nil {
			wsHub.Broadcast(payload)
		}
	})

	sweeper := sweep.New(slot, registry, eventMgr, archiver, rotationPeriod, graceTTL/5, graceTTL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	var healthSignaler api.HealthSignaler
	if pgStore != nil {
		healthSignaler = pgStore
	}
	handler := api.NewHandler(slot, registry, eventMgr, wsHub, pgStore != nil, healthSignaler)
	r := api.SetupRouter(handler)

	port := config.GetEnvOrDefault("PORT", "5339")
	log.Printf("listening on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func marshalEvent(e events.GameEvent) []byte {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("failed to marshal game event: %v", err)
		return nil
	}
	return payload
}
