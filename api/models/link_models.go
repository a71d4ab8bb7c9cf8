package models

type ResolveLinkParams struct {
	URI string `json:"uri" binding:"required"`
}

// LinkRejection is the error body for links that cannot be dispatched.
// Category buckets the failure the same way the router reports it.
type LinkRejection struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Category string `json:"category"`
}
