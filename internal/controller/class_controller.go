package controller

import (
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ClassController struct {
	ClassService *service.ClassService
}

func NewClassController(classService *service.ClassService) *ClassController {
	return &ClassController{ClassService: classService}
}

type JoinClassRequest struct {
	ClassCode string `json:"class_code" binding:"required,len=6"`
}

type AddStudentRequest struct {
	NIS string `json:"nis" binding:"required,nis"`
}

// CreateClass godoc
// @Summary Create a class
// @Description Creates a class owned by the calling teacher with a generated 6-character join code
// @Tags Classes
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateClassInput true "Class data"
// @Success 201 {object} util.Response{data=model.Class} "Created"
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 403 {object} util.Response "Forbidden"
// @Router /api/classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.CreateClassInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.Create(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// ListClasses godoc
// @Summary List classes
// @Description Teachers see their own classes, students the classes they joined, admins every class
// @Tags Classes
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Class} "Success"
// @Router /api/classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	classes, err := c.ClassService.List(claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// GetClass godoc
// @Summary Get a class
// @Tags Classes
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Class ID"
// @Success 200 {object} util.Response{data=model.Class} "Success"
// @Failure 403 {object} util.Response "Not the owner or a member"
// @Failure 404 {object} util.Response "Class not found"
// @Router /api/classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	class, err := c.ClassService.Get(id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// UpdateClass godoc
// @Summary Update a class
// @Tags Classes
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Class ID"
// @Param   body body service.UpdateClassInput true "Fields to change"
// @Success 200 {object} util.Response{data=model.Class} "Updated"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Class not found"
// @Router /api/classes/{id} [put]
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateClassInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.Update(id, claims, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "class updated", class)
}

// DeleteClass godoc
// @Summary Delete a class
// @Description Marks the class inactive
// @Tags Classes
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Class ID"
// @Success 200 {object} util.Response "Deleted"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Class not found"
// @Router /api/classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.ClassService.Delete(id, claims, clientInfo(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "class deleted", nil)
}

// JoinClass godoc
// @Summary Join a class by code
// @Tags Classes
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body JoinClassRequest true "Class code"
// @Success 200 {object} util.Response{data=model.Class} "Joined"
// @Failure 404 {object} util.Response "Unknown class code"
// @Failure 409 {object} util.Response "Already a member"
// @Router /api/classes/join [post]
func (c *ClassController) JoinClass(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req JoinClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.Join(claims.UserID, req.ClassCode)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "joined class", class)
}

// GetStudents godoc
// @Summary Class roster
// @Tags Classes
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Class ID"
// @Success 200 {object} util.Response{data=[]service.RosterEntry} "Success"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Class not found"
// @Router /api/classes/{id}/students [get]
func (c *ClassController) GetStudents(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	roster, err := c.ClassService.Roster(id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, roster)
}

// AddStudent godoc
// @Summary Add a student by NIS
// @Tags Classes
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Class ID"
// @Param   body body AddStudentRequest true "Student NIS"
// @Success 201 {object} util.Response{data=model.ClassMember} "Added"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Student not found"
// @Failure 409 {object} util.Response "Already a member"
// @Router /api/classes/{id}/students [post]
func (c *ClassController) AddStudent(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req AddStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	member, err := c.ClassService.AddStudent(id, claims, req.NIS)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, member)
}

// RemoveStudent godoc
// @Summary Remove a student from a class
// @Tags Classes
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Class ID"
// @Param   studentId path int true "Student user ID"
// @Success 200 {object} util.Response "Removed"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Student not in class"
// @Router /api/classes/{id}/students/{studentId} [delete]
func (c *ClassController) RemoveStudent(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := util.ParseIDParam(ctx, "studentId")
	if !ok {
		return
	}

	if err := c.ClassService.RemoveStudent(id, claims, studentID); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "student removed", nil)
}
