package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRejectsEmptyBundleID(t *testing.T) {
	_, err := NewContentIndexMdfindAdapter().Search(t.Context(), "  ")

	require.Error(t, err)
	var errBuilder *errbuilder.ErrBuilder
	require.True(t, errors.As(err, &errBuilder))
	assert.Equal(t, errbuilder.CodeInvalidArgument, errBuilder.Code)
}

func TestSearchHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewContentIndexMdfindAdapter().Search(ctx, "com.example.app")

	assert.ErrorIs(t, err, context.Canceled)
}
