package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"group-dating-app/internal/config"
	"group-dating-app/internal/matching"
	"group-dating-app/internal/models"
	"group-dating-app/internal/redis"

	"github.com/gin-gonic/gin"
)

type MatchingHandler struct {
	svc   *matching.Service
	redis *redis.Client
	cfg   *config.Config
}

type CreateLikeRequest struct {
	LikerGroupID uint `json:"liker_group_id" binding:"required"`
	LikeeGroupID uint `json:"likee_group_id" binding:"required"`
}

func NewMatchingHandler(svc *matching.Service, redis *redis.Client, cfg *config.Config) *MatchingHandler {
	return &MatchingHandler{svc: svc, redis: redis, cfg: cfg}
}

func (h *MatchingHandler) CreateLike(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req CreateLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err)})
		return
	}

	like, err := h.svc.CreateLike(c.Request.Context(), req.LikerGroupID, req.LikeeGroupID, userID.(uint))
	if err != nil {
		h.renderMatchingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"like": like})
}

func (h *MatchingHandler) ApproveLike(c *gin.Context) {
	userID, _ := c.Get("user_id")
	likeID, err := strconv.ParseUint(c.Param("like_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid like ID"})
		return
	}

	like, match, err := h.svc.Approve(c.Request.Context(), uint(likeID), userID.(uint))
	if errors.Is(err, matching.ErrAlreadyApproved) {
		// Idempotent no-op: report success with the unchanged like.
		c.JSON(http.StatusOK, gin.H{
			"message": "Already approved",
			"like":    like,
		})
		return
	}
	if err != nil {
		h.renderMatchingError(c, err)
		return
	}

	if match != nil {
		h.cacheMatchData(c.Request.Context(), match)
		c.JSON(http.StatusOK, gin.H{
			"message": "Match created!",
			"like":    like,
			"match":   match,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Like approved",
		"like":    like,
	})
}

func (h *MatchingHandler) RejectLike(c *gin.Context) {
	userID, _ := c.Get("user_id")
	likeID, err := strconv.ParseUint(c.Param("like_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid like ID"})
		return
	}

	like, err := h.svc.Reject(c.Request.Context(), uint(likeID), userID.(uint))
	if err != nil {
		h.renderMatchingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Like rejected", "like": like})
}

func (h *MatchingHandler) GetPendingLikes(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("group_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	filter := matching.PendingLikeFilter{
		Role:   matching.Role(c.Query("role")),
		Status: c.Query("status"),
	}

	likes, err := h.svc.PendingLikes(c.Request.Context(), uint(groupID), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending likes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

func (h *MatchingHandler) GetMatches(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("group_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	matches, err := h.svc.Matches(c.Request.Context(), uint(groupID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch matches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (h *MatchingHandler) Unmatch(c *gin.Context) {
	userID, _ := c.Get("user_id")
	matchID, err := strconv.ParseUint(c.Param("match_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid match ID"})
		return
	}

	match, err := h.svc.Unmatch(c.Request.Context(), uint(matchID), userID.(uint))
	if err != nil {
		h.renderMatchingError(c, err)
		return
	}

	h.redis.Del(c.Request.Context(), "match:"+strconv.FormatUint(uint64(match.ID), 10))

	c.JSON(http.StatusOK, gin.H{"message": "Unmatched successfully"})
}

func (h *MatchingHandler) renderMatchingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, matching.ErrSelfLike),
		errors.Is(err, matching.ErrInvalidGroupSize),
		errors.Is(err, matching.ErrAlreadyTerminal):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, matching.ErrNotAMember):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, matching.ErrDuplicateLike):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, matching.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Too much contention, please retry"})
	case errors.Is(err, matching.ErrLikeNotFound),
		errors.Is(err, matching.ErrGroupNotFound),
		errors.Is(err, matching.ErrMatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// cacheMatchData mirrors fresh matches into redis so clients polling for
// "it's a match" screens don't hit the database.
func (h *MatchingHandler) cacheMatchData(ctx context.Context, match *models.Match) {
	matchKey := "match:" + strconv.FormatUint(uint64(match.ID), 10)
	matchData := map[string]interface{}{
		"id":         match.ID,
		"group1_id":  match.Group1ID,
		"group2_id":  match.Group2ID,
		"matched_at": match.MatchedAt.Unix(),
	}

	h.redis.HSet(ctx, matchKey, matchData)
	h.redis.Expire(ctx, matchKey, h.cfg.MatchCacheTTL)
}
