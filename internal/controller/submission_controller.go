package controller

import (
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
}

func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService}
}

// MySubmissions godoc
// @Summary Own submissions
// @Tags Submissions
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Submission} "Success"
// @Router /api/submissions/me [get]
func (c *SubmissionController) MySubmissions(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	submissions, err := c.SubmissionService.ListMine(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, submissions)
}

// GetSubmission godoc
// @Summary Get a submission
// @Tags Submissions
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Submission ID"
// @Success 200 {object} util.Response{data=model.Submission} "Success"
// @Failure 403 {object} util.Response "Forbidden"
// @Failure 404 {object} util.Response "Submission not found"
// @Router /api/submissions/{id} [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	submission, err := c.SubmissionService.Get(id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, submission)
}

// GradeSubmission godoc
// @Summary Grade a submission
// @Description Score must be between 0 and the assignment points. Regrading is allowed.
// @Tags Submissions
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Submission ID"
// @Param   body body service.GradeInput true "Score and feedback"
// @Success 200 {object} util.Response{data=model.Submission} "Graded"
// @Failure 400 {object} util.Response "Score out of range"
// @Failure 403 {object} util.Response "Not the class teacher"
// @Failure 404 {object} util.Response "Submission not found"
// @Router /api/submissions/{id}/grade [put]
func (c *SubmissionController) GradeSubmission(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.GradeInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.SubmissionService.Grade(id, claims, req, clientInfo(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "submission graded", submission)
}

// DownloadSubmission godoc
// @Summary Download the submission file
// @Tags Submissions
// @Produce  octet-stream
// @Security ApiKeyAuth
// @Param   id path int true "Submission ID"
// @Success 200 {file} file "Submission file"
// @Failure 404 {object} util.Response "No file attached"
// @Router /api/submissions/{id}/download [get]
func (c *SubmissionController) DownloadSubmission(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	file, err := c.SubmissionService.OpenFile(ctx.Request.Context(), id, claims)
	if err != nil {
		respondError(ctx, err)
		return
	}
	sendFile(ctx, file)
}
