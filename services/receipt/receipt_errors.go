package receipt

import "errors"

var (
	// ErrBadImage means the upload was not decodable base64 image data.
	ErrBadImage = errors.New("invalid image data")
	// ErrAgentUnavailable means the analysis agent could not be reached.
	ErrAgentUnavailable = errors.New("receipt analysis is unavailable")
	// ErrAnalysisFailed means the agent answered but could not process the image.
	ErrAnalysisFailed = errors.New("receipt analysis failed")
	// ErrNotAReceipt means the agent decided the image is not a receipt.
	ErrNotAReceipt = errors.New("image is not a receipt")
)
