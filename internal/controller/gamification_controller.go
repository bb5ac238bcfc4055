package controller

import (
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type GamificationController struct {
	GamificationService *service.GamificationService
}

func NewGamificationController(gamificationService *service.GamificationService) *GamificationController {
	return &GamificationController{GamificationService: gamificationService}
}

// GetProfile godoc
// @Summary Gamification profile
// @Description Level, XP, rank, streak and today's missions of the caller
// @Tags Gamification
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.GamificationProfile} "Success"
// @Router /api/gamification/profile [get]
func (c *GamificationController) GetProfile(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	profile, err := c.GamificationService.GetProfile(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// GetMissions godoc
// @Summary Today's missions
// @Tags Gamification
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.MissionStatus} "Success"
// @Router /api/gamification/missions [get]
func (c *GamificationController) GetMissions(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	missions, err := c.GamificationService.GetMissions(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, missions)
}

// GetLeaderboard godoc
// @Summary Leaderboard
// @Description Top students by total XP
// @Tags Gamification
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "Entries (max 100)" default(10)
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "Success"
// @Router /api/gamification/leaderboard [get]
func (c *GamificationController) GetLeaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	entries, err := c.GamificationService.GetLeaderboard(ctx.Request.Context(), limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// GetStreak godoc
// @Summary Daily streak
// @Tags Gamification
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.StreakView} "Success"
// @Router /api/gamification/streak [get]
func (c *GamificationController) GetStreak(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	streak, err := c.GamificationService.GetStreak(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, streak)
}
