package transport

import (
	"context"
	"errors"
	"html/template"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ds124wfegd/electrorescue/internal/entity"
	"github.com/ds124wfegd/electrorescue/internal/pkg/chart"
	"github.com/ds124wfegd/electrorescue/internal/pkg/dataurl"
	"github.com/ds124wfegd/electrorescue/internal/pkg/processor"
	"github.com/ds124wfegd/electrorescue/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var errNoImage = errors.New("no image provided")

type pageData struct {
	State       entity.AppState
	Preview     template.URL
	Error       string
	Report      template.HTML
	Chart       chart.Chart
	MaxUploadMB int64
}

func (h *AnalysisHandler) Index(c *gin.Context) {
	session, err := h.service.GetSession(middleware.SessionID(c))
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	data := pageData{
		State:       session.State,
		Error:       session.Error,
		MaxUploadMB: h.maxUploadBytes >> 20,
	}
	// Preview is only set for images that passed validation
	if session.Preview != "" {
		data.Preview = template.URL(session.Preview)
	}

	if session.State == entity.StateSuccess && session.Result != nil {
		report, err := h.renderer.Render(session.Result.MarkdownReport)
		if err != nil {
			logrus.Errorf("Failed to render report: %v", err)
			report = template.HTML(template.HTMLEscapeString(session.Result.MarkdownReport))
		}
		data.Report = report
		data.Chart = chart.Build(session.Result.ComponentStats)
	}

	c.HTML(http.StatusOK, "index.html", data)
}

// Analyze accepts a multipart file in "image" or a data URL in "image_data".
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	imageData, err := h.readUpload(c)
	switch {
	case errors.Is(err, errNoImage):
		// nothing selected, page stays as it was
	case err != nil:
		if _, rerr := h.service.Reject(sessionID, err); rerr != nil {
			logrus.Errorf("Failed to record rejected upload: %v", rerr)
		}
	default:
		// validation failures are reflected in the session state
		if _, err := h.service.SelectImage(c.Request.Context(), sessionID, imageData); err != nil && !isValidationError(err) {
			logrus.Errorf("Failed to start analysis: %v", err)
		}
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AnalysisHandler) Reset(c *gin.Context) {
	if _, err := h.service.Reset(middleware.SessionID(c)); err != nil {
		logrus.Errorf("Failed to reset session: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AnalysisHandler) Retry(c *gin.Context) {
	if _, err := h.service.Retry(middleware.SessionID(c)); err != nil && !errors.Is(err, entity.ErrInvalidTransition) {
		logrus.Errorf("Failed to retry session: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AnalysisHandler) GetState(c *gin.Context) {
	session, err := h.service.GetSession(middleware.SessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := entity.SessionResponse{State: session.State, Error: session.Error}
	if session.State == entity.StateSuccess {
		response.Result = session.Result
	}
	c.JSON(http.StatusOK, response)
}

func (h *AnalysisHandler) AnalyzeJSON(c *gin.Context) {
	var req entity.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": entity.ErrImageTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON with an \"image\" data URL"})
		return
	}

	result, err := h.service.AnalyzeSync(c.Request.Context(), middleware.SessionID(c), req.Image)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entity.ErrInvalidImageFormat), errors.Is(err, entity.ErrUnsupportedImageType):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrAnalyzerUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *AnalysisHandler) readUpload(c *gin.Context) (string, error) {
	if file, err := c.FormFile("image"); err == nil {
		if !isValidImageType(filepath.Ext(file.Filename)) {
			return "", entity.ErrUnsupportedImageType
		}
		if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
			return "", entity.ErrImageTooLarge
		}

		src, err := file.Open()
		if err != nil {
			return "", err
		}
		defer src.Close()

		raw, err := io.ReadAll(src)
		if err != nil {
			return "", err
		}
		return dataurl.Encode(detectMimeType(raw, file.Filename, file.Header.Get("Content-Type")), raw), nil
	} else if isTooLarge(err) {
		return "", entity.ErrImageTooLarge
	}

	if data := strings.TrimSpace(c.PostForm("image_data")); data != "" {
		return data, nil
	}
	return "", errNoImage
}

// detectMimeType prefers sniffed content, then the file extension, then the
// client's claim.
func detectMimeType(raw []byte, filename, declared string) string {
	sniffed := http.DetectContentType(raw)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); strings.HasPrefix(byExt, "image/") {
		return byExt
	}
	if declared != "" {
		return declared
	}
	return sniffed
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func isValidationError(err error) bool {
	return errors.Is(err, entity.ErrInvalidImageFormat) ||
		errors.Is(err, entity.ErrUnsupportedImageType) ||
		errors.Is(err, entity.ErrImageTooLarge)
}

func isValidImageType(ext string) bool {
	mimeType, _, _ := mime.ParseMediaType(mime.TypeByExtension(strings.ToLower(ext)))
	return processor.IsSupportedType(mimeType)
}
