package handlers

import (
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"

	apierrors "github.com/ashishacharya123/pkms-todos/internal/errors"
	"github.com/ashishacharya123/pkms-todos/internal/services"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto API error responses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound),
		errors.Is(err, services.ErrBlockerNotFound),
		errors.Is(err, services.ErrDependencyNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, sentence(err))

	case errors.Is(err, services.ErrSelfDependency):
		apierrors.RespondWithError(c, http.StatusBadRequest,
			apierrors.NewAPIError(apierrors.ErrCodeSelfDependency, sentence(err)))

	case errors.Is(err, services.ErrDependencyCycle):
		apierrors.Conflict(c, apierrors.ErrCodeDependencyCycle, sentence(err))

	case errors.Is(err, services.ErrDependencyExists),
		errors.Is(err, services.ErrProjectNameTaken):
		apierrors.Conflict(c, apierrors.ErrCodeAlreadyExists, sentence(err))

	case errors.Is(err, services.ErrTitleRequired):
		apierrors.RespondWithError(c, http.StatusBadRequest,
			apierrors.NewAPIError(apierrors.ErrCodeMissingField, sentence(err)))

	case errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrTitleTooLong),
		errors.Is(err, services.ErrTagTooLong),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrParentNotFound),
		errors.Is(err, services.ErrInvalidProjectName):
		apierrors.BadRequest(c, sentence(err))

	case errors.Is(err, services.ErrExclusiveProjectConflict):
		apierrors.RespondWithError(c, http.StatusBadRequest,
			apierrors.NewAPIError(apierrors.ErrCodeInvalidOperation, sentence(err)))

	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

// sentence capitalizes an error message for display
func sentence(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
