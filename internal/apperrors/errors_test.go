package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog/internal/apperrors"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(apperrors.NotFound("product not found with id: %d", 7)))
	assert.Equal(t, apperrors.CodeDuplicate, apperrors.CodeOf(apperrors.Duplicate("sku taken")))
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(errors.New("driver crashed")))
}

func TestCodeOfWrapped(t *testing.T) {
	inner := apperrors.NotFound("category not found with id: %d", 3)
	wrapped := fmt.Errorf("loading category: %w", inner)

	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(wrapped))
	assert.True(t, apperrors.IsCode(wrapped, apperrors.CodeNotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("unique constraint failed")
	err := apperrors.Duplicate("sku taken").Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "sku taken")
	assert.Contains(t, err.Error(), "unique constraint failed")
}
