package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paddla/game-core/internal/config"
	"github.com/paddla/game-core/internal/events"
	"github.com/paddla/game-core/internal/model"
	"github.com/paddla/game-core/internal/protocol"
	"github.com/paddla/game-core/internal/verify"
	"github.com/paddla/game-core/pkg/models"
)

// Version is the engine's reported build identifier.
const Version = "paddla-game-core/1"

// HealthSignaler reports the replay mismatch rate over recent finished
// games, a cheap dashboard signal for client-side tampering.
// internal/store.PostgresStore implements this.
type HealthSignaler interface {
	MismatchRate(ctx context.Context, limit int) (mismatched, total int, err error)
}

// Handler wires the protocol layer to gin routes.
type Handler struct {
	slot     *protocol.CommitmentSlot
	registry *protocol.Registry
	eventMgr *events.Manager
	wsHub    *Hub
	dbUp     bool
	store    HealthSignaler
}

// NewHandler builds a route handler. dbUp reports whether a persistence
// layer is attached, surfaced on the health endpoint the way the
// teacher's handleHealth reports dbConnected. store may be nil when no
// persistence layer is configured.
func NewHandler(slot *protocol.CommitmentSlot, registry *protocol.Registry, eventMgr *events.Manager, wsHub *Hub, dbUp bool, store HealthSignaler) *Handler {
	return &Handler{slot: slot, registry: registry, eventMgr: eventMgr, wsHub: wsHub, dbUp: dbUp, store: store}
}

// SetupRouter builds the gin engine and mounts every route.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	// CORS — configurable via ALLOWED_ORIGINS, same shape the teacher
	// uses: empty or "*" allows any origin, otherwise a literal allowlist.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", h.handleHealth)
		pub.GET("/version", h.handleVersion)
		pub.GET("/stream", h.wsHub.Subscribe)
		pub.GET("/commitment", h.handleCommitment)
		pub.POST("/verify", h.handleVerify)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	protected.Use(NewRateLimiter(60, 10).Middleware())
	{
		protected.POST("/game/start", h.handleStartGame)
		protected.POST("/game/:id/finish", h.handleFinishGame)
		protected.GET("/game/:id/status", h.handleGameStatus)
	}

	return r
}

func (h *Handler) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":      "operational",
		"engine":      Version,
		"dbConnected": h.dbUp,
		"activeGames": h.registry.Len(),
	}

	if h.store != nil {
		if mismatched, total, err := h.store.MismatchRate(c.Request.Context(), 1000); err != nil {
			log.Printf("[api] mismatch rate unavailable: %v", err)
		} else {
			body["recentGamesAudited"] = total
			body["recentMismatches"] = mismatched
		}
	}

	c.JSON(http.StatusOK, body)
}

func (h *Handler) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": Version})
}

func (h *Handler) handleCommitment(c *gin.Context) {
	cm := h.slot.Current()
	c.JSON(http.StatusOK, models.CommitmentResponse{
		Commitment: cm.Value,
		IssuedAt:   cm.IssuedAt.Unix(),
		RotatesAt:  cm.RotatesAt.Unix(),
	})
}

func (h *Handler) handleStartGame(c *gin.Context) {
	var req models.StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.registry.StartGame(req.ClientSeed, req.NumBalls, req.Commitment)
	if err != nil {
		writeProtocolError(c, err)
		return
	}

	if h.eventMgr != nil {
		h.eventMgr.Emit(res.GameID, 0, "gameStart", map[string]any{"numBalls": res.NumBalls})
	}

	c.JSON(http.StatusOK, models.StartGameResponse{
		GameID:      res.GameID,
		Commitment:  res.Commitment,
		GameSeedHex: res.GameSeedHex,
		NumBalls:    res.NumBalls,
	})
}

func (h *Handler) handleFinishGame(c *gin.Context) {
	gameID := c.Param("id")

	var req models.FinishGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	inputLog := make([]model.InputRecord, len(req.InputLog))
	for i, r := range req.InputLog {
		inputLog[i] = model.InputRecord{Tick: r.Tick, TargetX: r.TargetX, TargetY: r.TargetY}
	}

	res, err := h.registry.FinishGame(gameID, inputLog, req.TotalWin)
	if err != nil {
		writeProtocolError(c, err)
		return
	}

	if h.eventMgr != nil {
		h.eventMgr.Emit(gameID, 0, "gameFinish", map[string]any{
			"matched": res.Matched, "serverTotalWin": res.ServerTotalWin,
		})
	}

	c.JSON(http.StatusOK, models.FinishGameResponse{
		GameID:         res.GameID,
		Matched:        res.Matched,
		ServerTotalWin: res.ServerTotalWin,
		ClientTotalWin: res.ClientTotalWin,
		ServerSeed:     res.ServerSeed,
		GameSeedHex:    res.GameSeedHex,
	})
}

func (h *Handler) handleGameStatus(c *gin.Context) {
	gameID := c.Param("id")

	res, err := h.registry.Status(gameID)
	if err != nil {
		writeProtocolError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.GameStatusResponse{
		GameID:    res.GameID,
		NumBalls:  res.NumBalls,
		CreatedAt: res.CreatedAt.Unix(),
		Finished:  res.Finished,
		Matched:   res.Matched,
	})
}

// handleVerify exposes internal/verify.Verify over HTTP for third
// parties auditing a finished game without talking to the registry.
func (h *Handler) handleVerify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.NumBalls < 1 || req.NumBalls > config.MaxNumBalls {
		c.JSON(http.StatusBadRequest, gin.H{"error": "numBalls out of range"})
		return
	}

	inputLog := make([]model.InputRecord, len(req.InputLog))
	for i, r := range req.InputLog {
		inputLog[i] = model.InputRecord{Tick: r.Tick, TargetX: r.TargetX, TargetY: r.TargetY}
	}

	result := verify.Verify(verify.Request{
		ServerSeed:          req.ServerSeed,
		ClientSeed:          req.ClientSeed,
		GameID:              req.GameID,
		ExpectedCommitment:  req.ExpectedCommitment,
		ExpectedGameSeedHex: req.ExpectedGameSeedHex,
		NumBalls:            req.NumBalls,
		InputLog:            inputLog,
		ClaimedTotalWin:     req.ClaimedTotalWin,
	})

	c.JSON(http.StatusOK, models.VerifyResponse{
		Valid:    result.Valid,
		Reason:   string(result.Reason),
		TotalWin: result.TotalWin,
	})
}

func writeProtocolError(c *gin.Context, err error) {
	perr, ok := err.(*protocol.Error)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusBadRequest
	switch perr.Kind {
	case protocol.KindNotFound:
		status = http.StatusNotFound
	case protocol.KindCommitmentMismatch, protocol.KindSeedMismatch, protocol.KindReplayMismatch:
		status = http.StatusConflict
	case protocol.KindAlreadyFinished:
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": perr.Message, "kind": string(perr.Kind)})
}
