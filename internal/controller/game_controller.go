package controller

import (
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GameController struct {
	GameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{GameService: gameService}
}

// ListGames godoc
// @Summary List games
// @Description Active games with the caller's progress; admins also see inactive games
// @Tags Games
// @Produce  json
// @Security ApiKeyAuth
// @Param   subject query string false "Subject"
// @Param   grade_level query string false "Grade level"
// @Param   game_type query string false "quiz, puzzle, memory or math"
// @Success 200 {object} util.Response{data=[]service.GameWithProgress} "Success"
// @Router /api/games [get]
func (c *GameController) ListGames(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	games, err := c.GameService.List(claims, repository.GameFilter{
		Subject:    ctx.Query("subject"),
		GradeLevel: ctx.Query("grade_level"),
		GameType:   ctx.Query("game_type"),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, games)
}

// GetGame godoc
// @Summary Get a game
// @Tags Games
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Game ID"
// @Success 200 {object} util.Response{data=service.GameWithProgress} "Success"
// @Failure 404 {object} util.Response "Game not found"
// @Router /api/games/{id} [get]
func (c *GameController) GetGame(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	game, err := c.GameService.Get(id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, game)
}

// CreateGame godoc
// @Summary Create a game
// @Tags Games
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.GameInput true "Game data"
// @Success 201 {object} util.Response{data=model.Game} "Created"
// @Failure 400 {object} util.Response "Invalid input"
// @Router /api/games [post]
func (c *GameController) CreateGame(ctx *gin.Context) {
	var req service.GameInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	game, err := c.GameService.Create(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, game)
}

// UpdateGame godoc
// @Summary Update a game
// @Tags Games
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Game ID"
// @Param   body body service.GameInput true "Game data"
// @Success 200 {object} util.Response{data=model.Game} "Updated"
// @Failure 404 {object} util.Response "Game not found"
// @Router /api/games/{id} [put]
func (c *GameController) UpdateGame(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.GameInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	game, err := c.GameService.Update(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "game updated", game)
}

// DeleteGame godoc
// @Summary Deactivate a game
// @Tags Games
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Game ID"
// @Success 200 {object} util.Response "Deleted"
// @Failure 404 {object} util.Response "Game not found"
// @Router /api/games/{id} [delete]
func (c *GameController) DeleteGame(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.GameService.Delete(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "game deleted", nil)
}

// PlayGame godoc
// @Summary Record a game play
// @Description Updates best score and attempts. Completed plays award the game XP.
// @Tags Games
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Game ID"
// @Param   body body service.PlayInput true "Play result"
// @Success 200 {object} util.Response{data=service.PlayResult} "Recorded"
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 404 {object} util.Response "Game not found"
// @Router /api/games/{id}/play [post]
func (c *GameController) PlayGame(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.PlayInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GameService.Play(id, claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
