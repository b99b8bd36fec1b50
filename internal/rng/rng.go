// Package rng implements PADDLA's input-seeded RNG: a keyed-hash
// construction whose every draw depends on (game seed, tick, bumper
// position, event label, per-event counter). Because the player's
// post-move bumper position is mixed into the message before any draw
// for that tick is computed, publishing the game seed ahead of play
// cannot leak future randomness (spec §4.2).
package rng

import (
	"fmt"
	"sync"

	"github.com/paddla/game-core/internal/cryptoutil"
)

// RNG is bound to one gameSeedHex for the lifetime of a game.
type RNG struct {
	mu         sync.Mutex
	keyBytes   []byte
	tick       int
	bumperX    float64
	bumperY    float64
	counter    int
	hasContext bool
}

// New binds an RNG to gameSeedHex, a 64-hex-char HMAC key (used verbatim
// as ASCII bytes, per spec §4.2 — not hex-decoded).
func New(gameSeedHex string) *RNG {
	return &RNG{keyBytes: []byte(gameSeedHex)}
}

// SetTickContext replaces (tick, bumperX, bumperY) and resets the
// per-tick counter to 0, unless the triple is unchanged, in which case
// the context (and counter) is left alone.
func (r *RNG) SetTickContext(tick int, bumperX, bumperY float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasContext && r.tick == tick && r.bumperX == bumperX && r.bumperY == bumperY {
		return
	}
	r.tick = tick
	r.bumperX = bumperX
	r.bumperY = bumperY
	r.counter = 0
	r.hasContext = true
}

// NextDouble draws the next uniform value in [0,1) for eventLabel,
// composing the exact message template from spec §4.2 and advancing the
// per-tick counter.
func (r *RNG) NextDouble(eventLabel string) float64 {
	r.mu.Lock()
	msg := fmt.Sprintf("%d:%.4f:%.4f:%s:%d", r.tick, r.bumperX, r.bumperY, eventLabel, r.counter)
	r.counter++
	r.mu.Unlock()

	h := cryptoutil.HMACSHA256(r.keyBytes, []byte(msg))
	return cryptoutil.BytesToDouble(h)
}

// Counter returns the current per-tick draw counter (test/debug use).
func (r *RNG) Counter() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counter
}
