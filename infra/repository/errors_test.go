package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "nil error returns nil",
			input:    nil,
			expected: nil,
		},
		{
			name:     "duplicate key error maps to ErrAlreadyExists",
			input:    gorm.ErrDuplicatedKey,
			expected: domain.ErrAlreadyExists,
		},
		{
			name:     "record not found error maps to ErrNotFound",
			input:    gorm.ErrRecordNotFound,
			expected: domain.ErrNotFound,
		},
		{
			name:     "wrapped duplicate key error maps correctly",
			input:    errors.Join(errors.New("outer error"), gorm.ErrDuplicatedKey),
			expected: domain.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MapGormErrorToDomain(tt.input)
			if tt.expected == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.expected)
		})
	}

	t.Run("non-GORM error returns original", func(t *testing.T) {
		t.Parallel()
		original := errors.New("some other error")
		assert.Equal(t, original, MapGormErrorToDomain(original))
	})
}

func TestMapNotFound(t *testing.T) {
	t.Parallel()
	err := mapNotFound(gorm.ErrRecordNotFound, account.ErrAccountNotFound)
	require.Error(t, err)
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, mapNotFound(other, account.ErrAccountNotFound))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, WrapError(func() error { return nil }))
	assert.ErrorIs(t, WrapError(func() error {
		return fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)
	}), domain.ErrAlreadyExists)

	other := errors.New("connection reset")
	assert.Equal(t, other, WrapError(func() error { return other }))
}
