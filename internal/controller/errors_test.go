package controller

import (
	"errors"
	"fmt"
	"io"
	"mindagrow_backend/internal/service"
	"mindagrow_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		want int
	}{
		{util.ErrInvalidCredentials, http.StatusUnauthorized},
		{util.ErrAccountInactive, http.StatusForbidden},
		{util.ErrPermissionDenied, http.StatusForbidden},
		{util.ErrEmailRegistered, http.StatusConflict},
		{util.ErrAlreadyEnrolled, http.StatusConflict},
		{util.ErrClassNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: NIS 123", util.ErrDuplicateIdentifier), http.StatusBadRequest},
		{fmt.Errorf("%w (max 100)", util.ErrInvalidScore), http.StatusBadRequest},
		{util.ErrFileTooLarge, http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(w)
		ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(ctx, tt.err)
		assert.Equal(t, tt.want, w.Code, tt.err.Error())
	}
}

func TestSendFileSetsAttachmentHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	sendFile(ctx, &service.FileDownload{
		Reader: io.NopCloser(strings.NewReader("isi")),
		Name:   "tugas akhir.pdf",
		Mime:   util.MimePDF,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, util.MimePDF, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "tugas%20akhir.pdf")
	assert.Equal(t, "isi", w.Body.String())
}
