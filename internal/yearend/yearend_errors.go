package yearend

import (
	"net/http"

	"nia-hrms/internal/shared/apperror"
)

var ErrInvalidTargetYear = apperror.New(
	apperror.CodeInvalidInput,
	"target year is out of range",
	http.StatusBadRequest,
)
