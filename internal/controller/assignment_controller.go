package controller

import (
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AssignmentController struct {
	AssignmentService *service.AssignmentService
	SubmissionService *service.SubmissionService
}

func NewAssignmentController(assignmentService *service.AssignmentService, submissionService *service.SubmissionService) *AssignmentController {
	return &AssignmentController{
		AssignmentService: assignmentService,
		SubmissionService: submissionService,
	}
}

// CreateAssignment godoc
// @Summary Create an assignment
// @Description Multipart form; the optional file is stored under assignments/
// @Tags Assignments
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   class_id formData int true "Class ID"
// @Param   title formData string true "Title"
// @Param   description formData string false "Description"
// @Param   due_date formData string true "Due date (RFC3339)"
// @Param   points formData int false "Maximum score (1-1000)" default(100)
// @Param   file formData file false "Attachment"
// @Success 201 {object} util.Response{data=model.Assignment} "Created"
// @Failure 400 {object} util.Response "Invalid input or file"
// @Failure 403 {object} util.Response "Not the class owner"
// @Router /api/assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.CreateAssignmentInput
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	fh, err := optionalFile(ctx, "file")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.AssignmentService.Create(ctx.Request.Context(), claims, req, fh)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, assignment)
}

// ListAssignments godoc
// @Summary List assignments
// @Description Teachers get submission counts, students get their own submission
// @Tags Assignments
// @Produce  json
// @Security ApiKeyAuth
// @Param   class_id query int false "Class ID"
// @Param   status query string false "active or closed"
// @Success 200 {object} util.Response{data=[]model.Assignment} "Success"
// @Failure 403 {object} util.Response "Class not accessible"
// @Router /api/assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	classID := util.MustParseUint(ctx.Query("class_id"))
	assignments, err := c.AssignmentService.List(claims, classID, ctx.Query("status"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, assignments)
}

// GetAssignment godoc
// @Summary Get an assignment
// @Tags Assignments
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assignment ID"
// @Success 200 {object} util.Response{data=model.Assignment} "Success"
// @Failure 403 {object} util.Response "Forbidden"
// @Failure 404 {object} util.Response "Assignment not found"
// @Router /api/assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	assignment, err := c.AssignmentService.Get(id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, assignment)
}

// UpdateAssignment godoc
// @Summary Update an assignment
// @Description Multipart form; a new file replaces the previous attachment
// @Tags Assignments
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assignment ID"
// @Param   title formData string false "Title"
// @Param   description formData string false "Description"
// @Param   due_date formData string false "Due date (RFC3339)"
// @Param   points formData int false "Maximum score"
// @Param   status formData string false "active or closed"
// @Param   file formData file false "Attachment"
// @Success 200 {object} util.Response{data=model.Assignment} "Updated"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Assignment not found"
// @Router /api/assignments/{id} [put]
func (c *AssignmentController) UpdateAssignment(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateAssignmentInput
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	fh, err := optionalFile(ctx, "file")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.AssignmentService.Update(ctx.Request.Context(), id, claims, req, fh)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "assignment updated", assignment)
}

// DeleteAssignment godoc
// @Summary Delete an assignment
// @Tags Assignments
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assignment ID"
// @Success 200 {object} util.Response "Deleted"
// @Failure 403 {object} util.Response "Not the owner"
// @Failure 404 {object} util.Response "Assignment not found"
// @Router /api/assignments/{id} [delete]
func (c *AssignmentController) DeleteAssignment(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.AssignmentService.Delete(id, claims); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "assignment deleted", nil)
}

// DownloadAssignment godoc
// @Summary Download the assignment attachment
// @Tags Assignments
// @Produce  octet-stream
// @Security ApiKeyAuth
// @Param   id path int true "Assignment ID"
// @Success 200 {file} file "Attachment"
// @Failure 404 {object} util.Response "No file attached"
// @Router /api/assignments/{id}/download [get]
func (c *AssignmentController) DownloadAssignment(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	file, err := c.AssignmentService.OpenFile(ctx.Request.Context(), id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	sendFile(ctx, file)
}

// GetSubmissions godoc
// @Summary Submissions of an assignment
// @Tags Assignments
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assignment ID"
// @Success 200 {object} util.Response{data=[]model.Submission} "Success"
// @Failure 403 {object} util.Response "Not the owner"
// @Router /api/assignments/{id}/submissions [get]
func (c *AssignmentController) GetSubmissions(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	submissions, err := c.AssignmentService.Submissions(id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, submissions)
}

// ExportGrades godoc
// @Summary Export grades as XLSX
// @Description One row per class member with submission status, score and feedback
// @Tags Assignments
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Param   id path int true "Assignment ID"
// @Success 200 {file} file "Workbook"
// @Failure 403 {object} util.Response "Not the owner"
// @Router /api/assignments/{id}/grades/export [get]
func (c *AssignmentController) ExportGrades(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	buf, filename, err := c.AssignmentService.ExportGrades(id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"; filename*=UTF-8''`+url.PathEscape(filename))
	ctx.Data(http.StatusOK, xlsxMime, buf.Bytes())
}

// Submit godoc
// @Summary Submit an assignment
// @Description Multipart form with content and/or file. Awards submission XP and advances the submit mission.
// @Tags Submissions
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assignment ID"
// @Param   content formData string false "Answer text"
// @Param   file formData file false "Answer file"
// @Success 201 {object} util.Response{data=service.SubmitResult} "Submitted"
// @Failure 400 {object} util.Response "Closed, duplicate or empty submission"
// @Failure 403 {object} util.Response "Not a class member"
// @Failure 404 {object} util.Response "Assignment not found"
// @Router /api/assignments/{id}/submit [post]
func (c *AssignmentController) Submit(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	fh, err := optionalFile(ctx, "file")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SubmissionService.Submit(ctx.Request.Context(), id, claims.UserID, ctx.PostForm("content"), fh)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}
