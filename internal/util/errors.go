package util

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrSessionRevoked      = errors.New("session expired or revoked")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	ErrChildNotFound       = errors.New("student with that NIS not found")
	ErrChildLinked         = errors.New("student is already linked to another parent")
	ErrInvalidRole         = errors.New("invalid role")
	ErrWrongPassword       = errors.New("old password is incorrect")
	ErrMissingIdentifier   = errors.New("nis, nuptk or nik is required for the selected role")
	ErrInvalidInput        = errors.New("invalid input")

	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("resource not found")

	ErrClassNotFound   = errors.New("class not found")
	ErrAlreadyMember   = errors.New("student already joined this class")
	ErrNotClassMember  = errors.New("not a member of this class")
	ErrStudentNotFound = errors.New("student not found")

	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAssignmentClosed   = errors.New("assignment is no longer accepting submissions")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadySubmitted   = errors.New("assignment already submitted")
	ErrEmptySubmission    = errors.New("submission requires content or a file")
	ErrInvalidScore       = errors.New("score must be between 0 and the assignment points")

	ErrMaterialNotFound = errors.New("material not found")
	ErrMissingLinkURL   = errors.New("link_url is required for link materials")

	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseNotPublished = errors.New("course is not published")
	ErrModuleNotFound     = errors.New("module not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryExists     = errors.New("category already exists")

	ErrGameNotFound = errors.New("game not found")

	ErrFileRequired      = errors.New("file is required")
	ErrFileTooLarge      = errors.New("file is too large")
	ErrFileTypeForbidden = errors.New("file type is not allowed")
	ErrNoFile            = errors.New("no file attached")
)
