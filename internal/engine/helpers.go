package engine

import "github.com/paddla/game-core/internal/geom"

func fpRound(v float64) float64                       { return geom.Round(v) }
func dist(ax, ay, bx, by float64) float64              { return geom.Dist(ax, ay, bx, by) }
func clampVal(v, lo, hi float64) float64                { return geom.Clamp(v, lo, hi) }
