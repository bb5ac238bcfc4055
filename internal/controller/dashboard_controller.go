package controller

import (
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// Siswa godoc
// @Summary Student dashboard
// @Description Classes, pending assignments, recent grades, gamification and a 7-day activity series
// @Tags Dashboard
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.SiswaDashboard} "Success"
// @Router /api/dashboard/siswa [get]
func (c *DashboardController) Siswa(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	data, err := c.DashboardService.Siswa(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// Guru godoc
// @Summary Teacher dashboard
// @Description Class and student counts, ungraded work and per-class average scores
// @Tags Dashboard
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.GuruDashboard} "Success"
// @Router /api/dashboard/guru [get]
func (c *DashboardController) Guru(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	data, err := c.DashboardService.Guru(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// Orangtua godoc
// @Summary Parent dashboard
// @Description Progress summary per linked child
// @Tags Dashboard
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.OrangtuaDashboard} "Success"
// @Router /api/dashboard/orangtua [get]
func (c *DashboardController) Orangtua(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	data, err := c.DashboardService.Orangtua(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// Admin godoc
// @Summary Admin dashboard
// @Tags Dashboard
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.AdminDashboard} "Success"
// @Router /api/dashboard/admin [get]
func (c *DashboardController) Admin(ctx *gin.Context) {
	data, err := c.DashboardService.Admin()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, data)
}
