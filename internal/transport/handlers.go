package transport

import (
	"github.com/ds124wfegd/electrorescue/internal/pkg/markdown"
	"github.com/ds124wfegd/electrorescue/internal/service"
)

type AnalysisHandler struct {
	service        service.AnalysisService
	renderer       markdown.Renderer
	maxUploadBytes int64
}

func NewAnalysisHandler(service service.AnalysisService, renderer markdown.Renderer, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{service: service, renderer: renderer, maxUploadBytes: maxUploadBytes}
}
