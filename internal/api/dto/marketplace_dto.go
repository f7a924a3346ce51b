package dto

type CreatePostRequest struct {
	Title        string  `json:"title" binding:"required"`
	Content      string  `json:"content"`
	Location     string  `json:"location"`
	Salary       float64 `json:"salary"`
	Requirements string  `json:"requirements"`
	StartDate    string  `json:"start_date" binding:"required"`
	EndDate      string  `json:"end_date" binding:"required"`
}

type CreateRequestBody struct {
	Message string `json:"message"`
}

type InviteRequestBody struct {
	SubcontractorID string `json:"subcontractor_id" binding:"required"`
	Note            string `json:"note"`
}

type ListRequestsQuery struct {
	Role     string `form:"role" binding:"required"`
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListRequestsResponse struct {
	Requests   interface{} `json:"requests"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

type UpdateJobStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpsertProfileRequest struct {
	PrimaryTrade  string   `json:"primary_trade"`
	Skills        []string `json:"skills"`
	Services      []string `json:"services"`
	CoverageAreas []string `json:"coverage_areas"`
}

type OpenForWorkRequest struct {
	Open *bool `json:"open" binding:"required"`
}

type TopKQuery struct {
	TopK int `form:"top_k"`
}
