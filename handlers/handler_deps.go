package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Korak-997/emma-wave/internal/diarize"
	"github.com/Korak-997/emma-wave/internal/pipeline"
	"github.com/Korak-997/emma-wave/internal/requestlog"
)

// ProcessorInterface is what handlers expect from the pipeline. Decoupling
// through an interface keeps handlers testable with a fake processor.
type ProcessorInterface interface {
	Process(ctx context.Context, up pipeline.Upload) (*pipeline.Result, error)
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Processor      ProcessorInterface
	Engine         diarize.Engine
	Recorder       *requestlog.Recorder
	Logger         *logrus.Logger
	AudioDir       string
	MaxUploadBytes int64
}

// NewApplicationHandler creates an ApplicationHandler with the given
// dependencies.
func NewApplicationHandler(
	processor ProcessorInterface,
	engine diarize.Engine,
	recorder *requestlog.Recorder,
	logger *logrus.Logger,
	audioDir string,
	maxUploadBytes int64,
) *ApplicationHandler {
	return &ApplicationHandler{
		Processor:      processor,
		Engine:         engine,
		Recorder:       recorder,
		Logger:         logger,
		AudioDir:       audioDir,
		MaxUploadBytes: maxUploadBytes,
	}
}
