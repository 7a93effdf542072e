package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"shoestore/internal/logger"

	"go.uber.org/zap"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 元のエラーはログだけに残して、クライアントには"db error"を返す
func dbError(op string, err error) error {
	logger.L().Error(op, zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "db error")
}

// WithinTxの戻り値用。HTTPErrorはそのまま、それ以外（commit失敗など）はdb error
func txError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return dbError(op, err)
}

func badRequest(msg string) error { return NewHTTPError(http.StatusBadRequest, msg) }
func notFound() error             { return NewHTTPError(http.StatusNotFound, "not found") }
func unauthorized() error         { return NewHTTPError(http.StatusUnauthorized, "unauthorized") }
func forbidden() error            { return NewHTTPError(http.StatusForbidden, "forbidden") }
func conflict(msg string) error   { return NewHTTPError(http.StatusConflict, msg) }
