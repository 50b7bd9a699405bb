package handlers

import (
	"errors"
	"net/http"

	"github.com/tbourn/go-search-server/internal/apperr"
	"github.com/tbourn/go-search-server/internal/services"
)

// validation lists service errors caused by the request itself.
var validation = []error{
	services.ErrInvalidIndexName,
	services.ErrTooManyStopwords,
	services.ErrEmptyBatch,
	services.ErrTooManyDocuments,
	services.ErrEmptyDocument,
	services.ErrDocumentTooLong,
	services.ErrEmptyQuery,
	services.ErrInvalidK,
}

// classify maps a service error onto the error taxonomy. Errors that are
// already classified pass through. Anything unknown becomes Other, which
// reports 500 for the wrapped persistence failures the services return.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, services.ErrIndexNotFound),
		errors.Is(err, services.ErrDocumentNotFound):
		return apperr.AbortWith(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrIndexExists):
		return apperr.AbortWith(http.StatusConflict, err.Error())
	}
	for _, v := range validation {
		if errors.Is(err, v) {
			return apperr.BadRequest(err.Error())
		}
	}
	return apperr.Other(err)
}
