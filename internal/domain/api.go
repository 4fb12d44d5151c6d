package domain

type ApiResponse struct {
	Message   string      `json:"message"`
	Success   bool        `json:"success"`
	Status    int         `json:"status"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ApiError   `json:"error,omitempty"`
}

type ApiError struct {
	Kind     ErrorKind `json:"kind"`
	Conflict string    `json:"conflict,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
