package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"

	config "github.com/airdiag/wifi-doctor/configs"
)

type Service struct {
	Config     config.DashboardConfig
	HttpClient *http.Client
	BaseURL    string
}

// APIError carries the status and message of a non-2xx dashboard response.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashboard request failed (status %d): %s", e.StatusCode, e.Message)
}

// Error body shape for dashboard API errors
type errorResponse struct {
	Errors []string `json:"errors"`
}

// Envelope for paginated list endpoints. Items stays raw so each caller
// decodes into its own slice type.
type pagedResponse struct {
	TotalCount int             `json:"totalCount"`
	Items      json.RawMessage `json:"items"`
}
