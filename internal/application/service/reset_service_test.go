package service

import (
	"context"
	"errors"
	"testing"

	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestResetService_Reset(t *testing.T) {
	ctx := context.Background()

	resetter := &mockResetter{}
	svc := NewResetService(resetter, &mockLogger{})

	err := svc.Reset(ctx, false)
	assert.True(t, entity.IsValidation(err))
	assert.Zero(t, resetter.calls)

	assert.NoError(t, svc.Reset(ctx, true))
	assert.Equal(t, 1, resetter.calls)

	resetter.resetFunc = func(ctx context.Context) error { return errors.New("busy") }
	assert.Error(t, svc.Reset(ctx, true))
}
