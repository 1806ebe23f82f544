package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/webshot/internal/metrics"
	"github.com/JakeFAU/webshot/internal/screenshot"
)

const (
	maxBodyBytes = 1 << 20

	// executionErrorMessage is returned for every capture failure; details
	// only go to the service log.
	executionErrorMessage = "something has gone horribly wrong, contact the administrator."

	maxDelayMillis = int64(math.MaxInt64 / int64(time.Millisecond))
)

var errInvalidBody = errors.New("invalid JSON body")

// ScreenshotHandler serves POST /api/screenshot.
type ScreenshotHandler struct {
	capturer screenshot.Capturer
	clock    screenshot.Clock
	logger   *zap.Logger
}

// NewScreenshotHandler wires the capturer, clock, and logger.
func NewScreenshotHandler(capturer screenshot.Capturer, clock screenshot.Clock, logger *zap.Logger) *ScreenshotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreenshotHandler{
		capturer: capturer,
		clock:    clock,
		logger:   logger,
	}
}

// Capture handles POST /api/screenshot with a body of {"url": ..., "delay": ...}.
// It returns 200 {"image-data": "data:image/png;base64,..."} on success,
// 400 {"status", "msg"} when a required field is missing, and 500 {"error"}
// when the browser could not produce a screenshot.
func (h *ScreenshotHandler) Capture(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Debug("rejecting request body", zap.Error(err))
		writeValidationError(w, errInvalidBody.Error())
		return
	}

	rawURL, ok := fields["url"]
	if !ok {
		writeValidationError(w, "field [url] required")
		return
	}
	rawDelay, ok := fields["delay"]
	if !ok {
		writeValidationError(w, "field [delay] required")
		return
	}

	req := screenshot.Request{
		URL:   jsonText(rawURL),
		Delay: parseDelay(rawDelay),
	}
	logger := h.logger.With(
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.String("url", req.URL),
		zap.Duration("delay", req.Delay),
	)

	if h.capturer == nil {
		logger.Error("screenshot capture failed", zap.Error(errors.New("no capturer configured")))
		writeExecutionError(w)
		return
	}

	start := h.now()
	img, err := h.capturer.Capture(r.Context(), req)
	elapsed := h.since(start)
	if err != nil {
		metrics.ObserveCapture(req.URL, metrics.OutcomeError, 0, elapsed)
		logger.Error("screenshot capture failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		writeExecutionError(w)
		return
	}

	metrics.ObserveCapture(req.URL, metrics.OutcomeSuccess, len(img.PNG), elapsed)
	logger.Info("screenshot captured",
		zap.Int("png_bytes", len(img.PNG)),
		zap.Duration("elapsed", elapsed),
	)
	writeJSON(w, http.StatusOK, captureResponse{ImageData: img.DataURI()})
}

func (h *ScreenshotHandler) now() time.Time {
	if h.clock == nil {
		return time.Now()
	}
	return h.clock.Now()
}

func (h *ScreenshotHandler) since(start time.Time) time.Duration {
	if h.clock == nil {
		return time.Since(start)
	}
	return h.clock.Since(start)
}

type captureResponse struct {
	ImageData string `json:"image-data"`
}

type validationErrorResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

type executionErrorResponse struct {
	Error string `json:"error"`
}

func writeValidationError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, validationErrorResponse{Status: http.StatusBadRequest, Msg: msg})
}

func writeExecutionError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, executionErrorResponse{Error: executionErrorMessage})
}

// decodeFields reads a JSON object body. An empty body is an empty object.
func decodeFields(body io.Reader) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode body: expected object, got null")
	}
	return fields, nil
}

// jsonText returns a JSON string's value, or the raw JSON text for any other
// value so it fails URL parsing downstream.
func jsonText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// parseDelay coerces a JSON delay into a duration. Numbers are truncated,
// strings are read up to the first non-digit, and everything else is zero.
// Negative results clamp to zero.
func parseDelay(raw json.RawMessage) time.Duration {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	var ms int64
	switch d := v.(type) {
	case float64:
		ms = truncateMillis(d)
	case string:
		ms = leadingInt(d)
	}
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// truncateMillis truncates f toward zero. Magnitudes that print in exponent
// form (>= 1e21 or < 1e-6) are read by their leading digits instead, so
// 1e21 is 1 and 5e-7 is 5.
func truncateMillis(f float64) int64 {
	abs := math.Abs(f)
	switch {
	case math.IsNaN(f):
		return 0
	case abs >= 1e21 || (abs > 0 && abs < 1e-6):
		return leadingInt(strconv.FormatFloat(f, 'g', -1, 64))
	case f >= float64(maxDelayMillis):
		return maxDelayMillis
	case f <= 0:
		return 0
	}
	return int64(f)
}

func leadingInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	negative := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}
	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		if n > (maxDelayMillis-int64(c-'0'))/10 {
			n = maxDelayMillis
			break
		}
		n = n*10 + int64(c-'0')
	}
	if negative {
		return -n
	}
	return n
}
