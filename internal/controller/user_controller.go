package controller

import (
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController serves profile, parent and admin user endpoints.
type UserController struct {
	UserService  *service.UserService
	AuditService *service.AuditService
}

func NewUserController(userService *service.UserService, auditService *service.AuditService) *UserController {
	return &UserController{
		UserService:  userService,
		AuditService: auditService,
	}
}

type LinkChildRequest struct {
	NIS string `json:"nis" binding:"required,nis"`
}

// GetProfile godoc
// @Summary Get own profile
// @Tags Users
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserProfile} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/users/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	profile, err := c.UserService.GetProfile(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// UpdateProfile godoc
// @Summary Update own profile
// @Description Updates user fields and the role profile fields that apply to the caller
// @Tags Users
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} util.Response{data=service.UserProfile} "Updated"
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 409 {object} util.Response "Email already registered"
// @Router /api/users/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.UpdateProfileInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.UserService.UpdateProfile(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "profile updated", profile)
}

// UploadAvatar godoc
// @Summary Upload avatar
// @Description Accepts a jpeg or png image, resized to fit 256x256
// @Tags Users
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   avatar formData file true "Avatar image"
// @Success 200 {object} util.Response{data=model.User} "Updated"
// @Failure 400 {object} util.Response "Missing or invalid image"
// @Router /api/users/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	fh, err := ctx.FormFile("avatar")
	if err != nil {
		respondError(ctx, util.ErrFileRequired)
		return
	}

	user, err := c.UserService.UpdateAvatar(ctx.Request.Context(), claims.UserID, fh)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "avatar updated", user)
}

// LinkChild godoc
// @Summary Link a child
// @Description Links an existing student to the calling parent by NIS
// @Tags Parents
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body LinkChildRequest true "Child NIS"
// @Success 200 {object} util.Response{data=model.Siswa} "Linked"
// @Failure 400 {object} util.Response "Student not found"
// @Failure 409 {object} util.Response "Student linked to another parent"
// @Router /api/parents/children [post]
func (c *UserController) LinkChild(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req LinkChildRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	child, err := c.UserService.LinkChild(claims.UserID, req.NIS)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "child linked", child)
}

// ListChildren godoc
// @Summary List linked children
// @Tags Parents
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Siswa} "Success"
// @Router /api/parents/children [get]
func (c *UserController) ListChildren(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	children, err := c.UserService.ListChildren(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, children)
}

// GetUsers godoc
// @Summary List users
// @Description Paged user list with role, status and search filters
// @Tags Admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Param   role query string false "siswa, guru, orangtua or admin"
// @Param   status query string false "active or inactive"
// @Param   search query string false "Name or email"
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Failure 403 {object} util.Response "Forbidden"
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	filter := repository.UserFilter{
		Role:   ctx.Query("role"),
		Status: ctx.Query("status"),
		Search: ctx.Query("search"),
	}

	users, total, err := c.UserService.ListUsers(filter, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}

// GetUser godoc
// @Summary Get a user
// @Tags Admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "User ID"
// @Success 200 {object} util.Response{data=service.UserProfile} "Success"
// @Failure 404 {object} util.Response "User not found"
// @Router /api/admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.UserService.GetProfile(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// UpdateStatus godoc
// @Summary Activate or deactivate a user
// @Description Deactivation revokes every session of the user
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "User ID"
// @Param   body body service.UpdateStatusInput true "New status"
// @Success 200 {object} util.Response "Updated"
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 404 {object} util.Response "User not found"
// @Router /api/admin/users/{id}/status [put]
func (c *UserController) UpdateStatus(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateStatusInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.SetStatus(claims.UserID, id, req.Status, clientInfo(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "status updated", gin.H{"id": id, "status": req.Status})
}

// ResetPassword godoc
// @Summary Reset a user's password
// @Description Generates a temporary password and revokes the user's sessions
// @Tags Admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "User ID"
// @Success 200 {object} util.Response{data=object} "Temporary password"
// @Failure 404 {object} util.Response "User not found"
// @Router /api/admin/users/{id}/reset-password [post]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	password, err := c.UserService.ResetPassword(claims.UserID, id, clientInfo(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "password reset", gin.H{"temporary_password": password})
}

// GetAuditLogs godoc
// @Summary List audit logs
// @Tags Admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   action query string false "Action filter"
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/admin/audit-logs [get]
func (c *UserController) GetAuditLogs(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)

	logs, total, err := c.AuditService.List(ctx.Query("action"), page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: logs, Total: total, Page: page, Limit: limit})
}
