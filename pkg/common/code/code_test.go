package code

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	cause := errors.New("boom")
	err := InsufficientStock.WithErr(cause)

	assert.ErrorIs(t, err, InsufficientStock)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ItemNotFound)
}

func TestFrom(t *testing.T) {
	c, msg := From(RequestNotPending.WithMsg("already decided"))
	assert.Equal(t, RequestNotPending, c)
	assert.Equal(t, "already decided", msg)

	c, _ = From(ItemNotFound)
	assert.Equal(t, ItemNotFound, c)

	c, msg = From(errors.New("plain"))
	assert.Equal(t, UnDefineErr, c)
	assert.Equal(t, "plain", msg)
}

func TestWrapKeepsClientCodes(t *testing.T) {
	err := Wrap(IssueErr, InsufficientStock)
	c, _ := From(err)
	assert.Equal(t, InsufficientStock, c)

	err = Wrap(RequestSubmitErr, ActivityLogErr.WithErr(errors.New("disk full")))
	c, _ = From(err)
	assert.Equal(t, RequestSubmitErr, c)
	assert.ErrorIs(t, err, ActivityLogErr)

	assert.NoError(t, Wrap(IssueErr, nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, Success.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, RequestNotFound.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, CreateDataErr.HTTPStatus())
}
