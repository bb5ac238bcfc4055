package controller

import (
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService         *service.AuthService
	UserService         *service.UserService
	GamificationService *service.GamificationService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService, gamificationService *service.GamificationService) *AuthController {
	return &AuthController{
		AuthService:         authService,
		UserService:         userService,
		GamificationService: gamificationService,
	}
}

// Register godoc
// @Summary Register a new account
// @Description Creates a siswa, guru or orangtua account with its role profile. The role identifier (nis, nuptk or nik) is required.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterInput true "Registration data"
// @Success 201 {object} util.Response{data=model.User} "Created"
// @Failure 400 {object} util.Response "Invalid input or duplicate identifier"
// @Failure 409 {object} util.Response "Email already registered"
// @Failure 500 {object} util.Response "Internal server error"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(req, clientInfo(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, user)
}

// Login godoc
// @Summary Log in
// @Description Identifier is an email when it contains "@", otherwise a NIS, NUPTK or NIK. Role narrows the identifier lookup.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   body body service.LoginInput true "Credentials"
// @Success 200 {object} util.Response{data=service.LoginResult} "Logged in"
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 401 {object} util.Response "Invalid credentials"
// @Failure 403 {object} util.Response "Account inactive"
// @Failure 429 {object} util.Response "Too many requests"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Login(req, clientInfo(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.SuccessMessage(ctx, "login successful", result)
}

// Logout godoc
// @Summary Log out
// @Description Deactivates the session bound to the current token
// @Tags Auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "Logged out"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	if err := c.AuthService.Logout(claims, clientInfo(ctx)); err != nil {
		respondError(ctx, err)
		return
	}

	util.SuccessMessage(ctx, "logged out", nil)
}

// Me godoc
// @Summary Current user
// @Description Returns the caller's user, role profile and gamification summary
// @Tags Auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	profile, err := c.UserService.GetProfile(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	summary, err := c.GamificationService.GetProfile(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"user":         profile,
		"gamification": summary,
	})
}

// ChangePassword godoc
// @Summary Change password
// @Description Verifies the old password, stores the new one and revokes every other session
// @Tags Auth
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ChangePasswordInput true "Old and new password"
// @Success 200 {object} util.Response "Password changed"
// @Failure 400 {object} util.Response "Old password is incorrect"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/auth/password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.ChangePasswordInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AuthService.ChangePassword(claims, req, clientInfo(ctx)); err != nil {
		respondError(ctx, err)
		return
	}

	util.SuccessMessage(ctx, "password changed", nil)
}
