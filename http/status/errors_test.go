package status

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	require.Equal(t, BadRequest, CodeOf(ErrInvalidRequest))
	require.Equal(t, RequestEntityTooLarge, CodeOf(fmt.Errorf("read body: %w", ErrBodyTooLarge)))
	require.Equal(t, InternalServerError, CodeOf(errors.New("something else")))
	require.ErrorIs(t, fmt.Errorf("wrapped: %w", ErrBadRequest), ErrBadRequest)
}
