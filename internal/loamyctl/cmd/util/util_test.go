package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeServer(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", NormalizeServer("localhost:8080/"))
	assert.Equal(t, "https://loamy.example.com", NormalizeServer("https://loamy.example.com"))
}

func TestCheckErr(t *testing.T) {
	var gotMsg string
	var gotCode int
	fatalErrHandler = func(msg string, code int) { gotMsg, gotCode = msg, code }
	defer func() { fatalErrHandler = fatal }()

	CheckErr(nil)
	assert.Zero(t, gotCode)

	CheckErr(errors.New("no route"))
	assert.Equal(t, "error: no route", gotMsg)
	assert.Equal(t, 1, gotCode)
}
