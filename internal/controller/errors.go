package controller

import (
	"errors"
	"io"
	"mime/multipart"
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"
	"mindagrow_backend/pkg/logger"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{util.ErrInvalidCredentials, http.StatusUnauthorized},
	{util.ErrUnauthorized, http.StatusUnauthorized},
	{util.ErrSessionRevoked, http.StatusUnauthorized},
	{util.ErrAccountInactive, http.StatusForbidden},
	{util.ErrPermissionDenied, http.StatusForbidden},
	{util.ErrNotClassMember, http.StatusForbidden},
	{util.ErrNotEnrolled, http.StatusForbidden},

	{util.ErrEmailRegistered, http.StatusConflict},
	{util.ErrAlreadyMember, http.StatusConflict},
	{util.ErrAlreadyEnrolled, http.StatusConflict},
	{util.ErrCategoryExists, http.StatusConflict},
	{util.ErrChildLinked, http.StatusConflict},

	{util.ErrUserNotFound, http.StatusNotFound},
	{util.ErrNotFound, http.StatusNotFound},
	{util.ErrClassNotFound, http.StatusNotFound},
	{util.ErrStudentNotFound, http.StatusNotFound},
	{util.ErrAssignmentNotFound, http.StatusNotFound},
	{util.ErrSubmissionNotFound, http.StatusNotFound},
	{util.ErrMaterialNotFound, http.StatusNotFound},
	{util.ErrCourseNotFound, http.StatusNotFound},
	{util.ErrModuleNotFound, http.StatusNotFound},
	{util.ErrLessonNotFound, http.StatusNotFound},
	{util.ErrCategoryNotFound, http.StatusNotFound},
	{util.ErrGameNotFound, http.StatusNotFound},
	{util.ErrNoFile, http.StatusNotFound},

	{util.ErrDuplicateIdentifier, http.StatusBadRequest},
	{util.ErrChildNotFound, http.StatusBadRequest},
	{util.ErrInvalidRole, http.StatusBadRequest},
	{util.ErrMissingIdentifier, http.StatusBadRequest},
	{util.ErrInvalidInput, http.StatusBadRequest},
	{util.ErrWrongPassword, http.StatusBadRequest},
	{util.ErrAssignmentClosed, http.StatusBadRequest},
	{util.ErrAlreadySubmitted, http.StatusBadRequest},
	{util.ErrEmptySubmission, http.StatusBadRequest},
	{util.ErrInvalidScore, http.StatusBadRequest},
	{util.ErrMissingLinkURL, http.StatusBadRequest},
	{util.ErrCourseNotPublished, http.StatusBadRequest},
	{util.ErrFileRequired, http.StatusBadRequest},
	{util.ErrFileTooLarge, http.StatusBadRequest},
	{util.ErrFileTypeForbidden, http.StatusBadRequest},
}

// respondError maps service errors to HTTP answers; anything unknown is a 500.
func respondError(ctx *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			util.Error(ctx, e.status, err.Error())
			return
		}
	}
	util.LogInternalError(ctx, err)
}

func clientInfo(ctx *gin.Context) service.ClientInfo {
	return service.ClientInfo{IP: ctx.ClientIP(), UserAgent: ctx.Request.UserAgent()}
}

// currentUser aborts with 401 when the request carries no claims.
func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return claims, true
}

// sendFile streams a stored upload as an attachment.
func sendFile(ctx *gin.Context, file *service.FileDownload) {
	defer file.Reader.Close()

	ctx.Header("Content-Type", file.Mime)
	ctx.Header("Content-Disposition", `attachment; filename="`+file.Name+`"; filename*=UTF-8''`+url.PathEscape(file.Name))
	ctx.Status(http.StatusOK)
	if _, err := io.Copy(ctx.Writer, file.Reader); err != nil {
		logger.Log.Warn("File download interrupted", zap.String("file", file.Name), zap.Error(err))
	}
}

// optionalFile returns the multipart file under field, or nil when absent.
func optionalFile(ctx *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := ctx.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return fh, err
}
