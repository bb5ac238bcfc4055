package controller

import (
	"mindagrow_backend/internal/repository"
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// ListCategories godoc
// @Summary List course categories
// @Tags Courses
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Category} "Success"
// @Router /api/categories [get]
func (c *CourseController) ListCategories(ctx *gin.Context) {
	categories, err := c.CourseService.ListCategories()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// CreateCategory godoc
// @Summary Create a course category
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CategoryInput true "Category"
// @Success 201 {object} util.Response{data=model.Category} "Created"
// @Failure 409 {object} util.Response "Category already exists"
// @Router /api/categories [post]
func (c *CourseController) CreateCategory(ctx *gin.Context) {
	var req service.CategoryInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	category, err := c.CourseService.CreateCategory(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, category)
}

// ListCourses godoc
// @Summary List courses
// @Description Published courses; teachers and admins may filter by status
// @Tags Courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   category_id query int false "Category ID"
// @Param   level query string false "beginner, intermediate or advanced"
// @Param   status query string false "draft or published"
// @Param   search query string false "Title search"
// @Param   page query int false "Page" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	page, limit := util.Pagination(ctx)

	filter := repository.CourseFilter{
		CategoryID: util.MustParseUint(ctx.Query("category_id")),
		Level:      ctx.Query("level"),
		Status:     ctx.Query("status"),
		Search:     ctx.Query("search"),
	}
	courses, total, err := c.CourseService.List(claims, filter, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// GetCourse godoc
// @Summary Get a course outline
// @Description Ordered modules and lessons; enrolled students also get their progress
// @Tags Courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseDetail} "Success"
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.CourseService.Get(id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CourseInput true "Course data"
// @Success 201 {object} util.Response{data=model.Course} "Created"
// @Failure 400 {object} util.Response "Invalid input"
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.CourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(claims, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Param   body body service.UpdateCourseInput true "Fields to change"
// @Success 200 {object} util.Response{data=model.Course} "Updated"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateCourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Update(id, claims, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "course updated", course)
}

// DeleteCourse godoc
// @Summary Archive a course
// @Tags Courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response "Archived"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Course not found"
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.CourseService.Delete(id, claims); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "course archived", nil)
}

// AddModule godoc
// @Summary Add a module to a course
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Param   body body service.ModuleInput true "Module"
// @Success 201 {object} util.Response{data=model.Module} "Created"
// @Failure 403 {object} util.Response "Not the owner"
// @Router /api/courses/{id}/modules [post]
func (c *CourseController) AddModule(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.ModuleInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.CourseService.AddModule(id, claims, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// AddLesson godoc
// @Summary Add a lesson to a module
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Module ID"
// @Param   body body service.LessonInput true "Lesson"
// @Success 201 {object} util.Response{data=model.Lesson} "Created"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Module not found"
// @Router /api/modules/{id}/lessons [post]
func (c *CourseController) AddLesson(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.LessonInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.CourseService.AddLesson(id, claims, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// Enroll godoc
// @Summary Enroll in a course
// @Tags Courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 201 {object} util.Response{data=model.Enrollment} "Enrolled"
// @Failure 400 {object} util.Response "Course not published"
// @Failure 409 {object} util.Response "Already enrolled"
// @Router /api/courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	enrollment, err := c.CourseService.Enroll(id, claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// MyEnrollments godoc
// @Summary Own enrollments
// @Tags Courses
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment} "Success"
// @Router /api/enrollments/me [get]
func (c *CourseController) MyEnrollments(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	enrollments, err := c.CourseService.MyEnrollments(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// CompleteLesson godoc
// @Summary Complete a lesson
// @Description Idempotent. The first completion awards lesson XP and, at 100% progress, the course XP.
// @Tags Courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Lesson ID"
// @Success 200 {object} util.Response{data=service.LessonCompletion} "Completed"
// @Failure 403 {object} util.Response "Not enrolled"
// @Failure 404 {object} util.Response "Lesson not found"
// @Router /api/lessons/{id}/complete [post]
func (c *CourseController) CompleteLesson(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	result, err := c.CourseService.CompleteLesson(id, claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
