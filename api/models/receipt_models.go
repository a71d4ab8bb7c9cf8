package models

// AnalyzeReceiptParams carries the receipt photo as base64, with or without
// a data: URI prefix.
type AnalyzeReceiptParams struct {
	ImageData string `json:"image_data" binding:"required"`
}
