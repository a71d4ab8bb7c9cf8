package receipt

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/WeSplit-io/WeSplit-Backend/providers/ai"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/metrics"
)

// BillAnalyzer is the slice of the agent client the service needs.
type BillAnalyzer interface {
	AnalyzeBill(imageData string) (*ai.AnalysisResponse, error)
	Health() (*ai.AgentHealth, error)
}

// Analysis is a validated, normalized extraction plus where the source
// image was archived.
type Analysis struct {
	Receipt        *ai.ReceiptData `json:"receipt"`
	Confidence     float64         `json:"confidence"`
	ProcessingTime float64         `json:"processing_time"`
	ImageKey       string          `json:"image_key,omitempty"`
}

// Service runs receipt images through the analysis agent, archives the
// original image, and enforces the agent's output contract before anything
// reaches a split.
type Service struct {
	agent  BillAnalyzer
	store  ObjectUploader
	logger *logging.Logger
}

// NewService wires the analyzer and an optional image store. Pass a nil
// store (not a typed nil) to disable archiving.
func NewService(agent BillAnalyzer, store ObjectUploader, logger *logging.Logger) *Service {
	return &Service{
		agent:  agent,
		store:  store,
		logger: logger,
	}
}

// Analyze decodes the uploaded image, archives it, and returns the agent's
// normalized extraction. The archive step is best-effort; a dead bucket
// never blocks an analysis.
func (s *Service) Analyze(ctx context.Context, userID int64, imageData string) (*Analysis, error) {
	payload, raw, contentType, err := decodeImage(imageData)
	if err != nil {
		metrics.RecordReceiptAnalysis("bad_image")
		return nil, err
	}

	imageKey := ""
	if s.store != nil {
		key := objectKey(userID, contentType)
		stored, err := s.store.Upload(ctx, key, raw, contentType)
		if err != nil {
			s.logger.Error(fmt.Sprintf("receipt image archive failed: %v", err))
		} else {
			imageKey = stored
		}
	}

	response, err := s.agent.AnalyzeBill(payload)
	if err != nil {
		metrics.RecordReceiptAnalysis("agent_unreachable")
		return nil, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}
	if !response.Success {
		metrics.RecordReceiptAnalysis("agent_error")
		return nil, fmt.Errorf("%w: %s", ErrAnalysisFailed, response.Error)
	}
	if response.Data == nil {
		metrics.RecordReceiptAnalysis("malformed")
		return nil, fmt.Errorf("%w: missing data", ai.ErrMalformedResponse)
	}
	if !response.IsReceipt || !response.Data.IsReceipt {
		metrics.RecordReceiptAnalysis("not_receipt")
		reason := response.Data.Reason
		if reason == "" {
			reason = "image does not look like a receipt"
		}
		return nil, fmt.Errorf("%w: %s", ErrNotAReceipt, reason)
	}

	response.Data.Normalize()
	if err := response.Data.Validate(); err != nil {
		metrics.RecordReceiptAnalysis("malformed")
		return nil, err
	}

	metrics.RecordReceiptAnalysis("accepted")
	s.logger.Info(fmt.Sprintf("receipt analyzed for user %d: category=%q items=%d", userID, response.Data.Category, len(response.Data.Items)))

	return &Analysis{
		Receipt:        response.Data,
		Confidence:     response.Confidence,
		ProcessingTime: response.ProcessingTime,
		ImageKey:       imageKey,
	}, nil
}

// AgentHealth reports whether the analysis agent is reachable and ready.
func (s *Service) AgentHealth() (*ai.AgentHealth, error) {
	return s.agent.Health()
}

// decodeImage accepts raw base64 or a data URI and returns the bare base64
// payload, the decoded bytes, and the content type for archiving.
func decodeImage(imageData string) (string, []byte, string, error) {
	payload := strings.TrimSpace(imageData)
	contentType := "image/jpeg"

	if strings.HasPrefix(payload, "data:") {
		header, rest, found := strings.Cut(payload, ",")
		if !found {
			return "", nil, "", fmt.Errorf("%w: data URI without payload", ErrBadImage)
		}
		if mediaType := strings.TrimPrefix(header, "data:"); mediaType != "" {
			if mt, _, _ := strings.Cut(mediaType, ";"); mt != "" {
				contentType = mt
			}
		}
		payload = rest
	}

	if payload == "" {
		return "", nil, "", fmt.Errorf("%w: empty payload", ErrBadImage)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, "", fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	return payload, raw, contentType, nil
}

func objectKey(userID int64, contentType string) string {
	ext := "jpg"
	switch contentType {
	case "image/png":
		ext = "png"
	case "image/webp":
		ext = "webp"
	case "image/heic":
		ext = "heic"
	}
	return fmt.Sprintf("receipts/%d/%s.%s", userID, uuid.New().String(), ext)
}
