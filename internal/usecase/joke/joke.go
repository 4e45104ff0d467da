package joke

import (
	"context"

	"go.uber.org/zap"

	pkgerrors "rating-user-service/pkg/errors"
	"rating-user-service/pkg/logger"
)

// Prompt is the fixed request forwarded upstream.
const Prompt = "Write a joke about tennis."

// ServiceName names the upstream in errors.
const ServiceName = "joke service"

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Usecase defines the joke proxy operation.
type Usecase interface {
	TennisJoke(ctx context.Context) (string, error)
}

var _ Usecase = (*Service)(nil)

// Service forwards the fixed prompt to a Generator.
type Service struct {
	gen Generator
	log *zap.Logger
}

// New creates a joke Service. A nil gen leaves the service unconfigured.
func New(gen Generator, log *zap.Logger) *Service {
	return &Service{gen: gen, log: log}
}

// TennisJoke returns the generated text unchanged. No retries are attempted.
func (s *Service) TennisJoke(ctx context.Context) (string, error) {
	if s.gen == nil {
		return "", pkgerrors.NewUnavailableError(ServiceName, false, nil)
	}

	text, err := s.gen.Generate(ctx, Prompt)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("joke generation failed", zap.Error(err))
		return "", pkgerrors.NewUnavailableError(ServiceName, true, err)
	}
	return text, nil
}
