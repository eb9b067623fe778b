package repositories

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslateArrivalCreateErrorDuplicateKey(t *testing.T) {
	err := translateArrivalCreateError(gorm.ErrDuplicatedKey, "DN-100", "PO-200")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDuplicateKey)
	require.Contains(t, err.Error(), "DN-100/PO-200")
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestTranslateArrivalCreateErrorWrappedDuplicateKey(t *testing.T) {
	// The duplicate may arrive wrapped by intermediate layers
	wrapped := errors.Wrap(gorm.ErrDuplicatedKey, "insert failed")
	require.ErrorIs(t, translateArrivalCreateError(wrapped, "DN-100", "PO-200"), ErrDuplicateKey)
}

func TestTranslateArrivalCreateErrorOtherFailures(t *testing.T) {
	require.NoError(t, translateArrivalCreateError(nil, "DN-100", "PO-200"))

	boom := errors.New("connection reset")
	err := translateArrivalCreateError(boom, "DN-100", "PO-200")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDuplicateKey)
	require.ErrorIs(t, err, boom)
}
