package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/fieldline/dispatch/internal/errors"
)

func TestClassify_Nil(t *testing.T) {
	assert.Equal(t, "", Classify(nil))
}

func TestClassify_AppErrorCodeWins(t *testing.T) {
	err := apperrors.Wrap(errors.New("pq: duplicate key"), apperrors.ErrCodeConflict, "upsert cache row")
	assert.Equal(t, "conflict", Classify(err))
	assert.Equal(t, "conflict", Classify(fmt.Errorf("replan run: %w", err)))
}

func TestClassify_FallsBackToTypeName(t *testing.T) {
	assert.Equal(t, "errors_errorstring", Classify(errors.New("plain")))
}

func TestClassify_UnwrapsToInnermost(t *testing.T) {
	inner := errors.New("connection refused")
	wrapped := fmt.Errorf("solve payload: %w", fmt.Errorf("post: %w", inner))
	assert.Equal(t, "errors_errorstring", Classify(wrapped))
}
