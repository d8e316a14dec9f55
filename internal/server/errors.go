// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/coldspray-hub/internal/calc"
	"github.com/pdiddy/coldspray-hub/internal/compose"
	"github.com/pdiddy/coldspray-hub/internal/contrib"
	"github.com/pdiddy/coldspray-hub/internal/dataset"
	"github.com/pdiddy/coldspray-hub/internal/executor"
	"github.com/pdiddy/coldspray-hub/internal/fragment"
	"github.com/pdiddy/coldspray-hub/internal/history"
)

// AppError is an error with the HTTP status and message sent to clients.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// MapError maps package errors to an AppError.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var execErr *executor.ExecError
	switch {
	case errors.Is(err, contrib.ErrEmptyDOI):
		return NewAppError(http.StatusBadRequest, contrib.ErrEmptyDOI.Error(), err)
	case errors.As(err, &execErr):
		return NewAppError(http.StatusUnprocessableEntity, execErr.Message(), err)
	case errors.Is(err, compose.ErrInvalidSelection),
		errors.Is(err, fragment.ErrUnknownOption),
		errors.Is(err, calc.ErrInvalidInput):
		return NewAppError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, calc.ErrNoRoot), errors.Is(err, calc.ErrStepSize):
		return NewAppError(http.StatusUnprocessableEntity, err.Error(), err)
	case errors.Is(err, dataset.ErrPaperNotFound), errors.Is(err, history.ErrNotFound):
		return NewAppError(http.StatusNotFound, err.Error(), err)
	}
	return NewAppError(http.StatusInternalServerError, "Internal server error", err)
}

func handleError(c *gin.Context, err error) {
	appErr := MapError(err)
	if appErr.Code >= http.StatusInternalServerError {
		c.Error(err)
	}
	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
}
