package errors_test

import (
	"errors"
	"net/http"
	"testing"

	vferrs "github.com/jdholdren/vaultfeed/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestEConstructor(t *testing.T) {
	got := vferrs.E(
		"something went wrong",
		vferrs.Detail{Field: "name", Error: "was bad"},
		http.StatusBadRequest,
	)
	want := &vferrs.Error{
		Err: errors.New("something went wrong"),
		Details: []vferrs.Detail{
			{Field: "name", Error: "was bad"},
		},
		Status: http.StatusBadRequest,
	}

	assert.Equal(t, want, got)
}

func TestUnwrap(t *testing.T) {
	sentinel := errors.New("underneath")
	err := vferrs.E(sentinel, http.StatusConflict)

	assert.True(t, errors.Is(err, sentinel))
}
