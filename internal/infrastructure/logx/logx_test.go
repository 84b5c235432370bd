package logx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWithFields(t *testing.T) {
	require.Same(t, L(), WithFields(context.Background()))

	ctx := Into(context.Background(), zap.String("request_id", "r-1"))
	require.NotSame(t, L(), WithFields(ctx))
	require.Same(t, WithFields(ctx), WithFields(Into(ctx)))
}
