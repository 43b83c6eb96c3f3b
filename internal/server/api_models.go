package server

// StartAuditRequest is the payload for submitting an audit job.
type StartAuditRequest struct {
	URL      string `json:"url" example:"http://localhost:9999"`
	MaxPages int    `json:"max_pages,omitempty" example:"20"`
	MaxDepth int    `json:"max_depth,omitempty" example:"3"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
