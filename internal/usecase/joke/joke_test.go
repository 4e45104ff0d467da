package joke

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"

	pkgerrors "rating-user-service/pkg/errors"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestTennisJoke_Success(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, Prompt).Return("Why did the tennis player...", nil).Once()

	text, err := New(gen, zaptest.NewLogger(t)).TennisJoke(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Why did the tennis player...", text)
	gen.AssertExpectations(t)
}

func TestTennisJoke_NotConfigured(t *testing.T) {
	_, err := New(nil, zaptest.NewLogger(t)).TennisJoke(context.Background())

	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, pkgerrors.Code(err))
	assert.EqualError(t, err, "joke service not configured")
}

func TestTennisJoke_UpstreamFailure(t *testing.T) {
	gen := new(MockGenerator)
	upstream := errors.New("401 invalid api key")
	gen.On("Generate", mock.Anything, Prompt).Return("", upstream).Once()

	_, err := New(gen, zaptest.NewLogger(t)).TennisJoke(context.Background())

	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, codes.Unavailable, pkgerrors.Code(err))
	gen.AssertNumberOfCalls(t, "Generate", 1)
}
