package feedbackapi

import (
	"encoding/json"
	"fmt"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
)

// envelope mirrors utils.APIResponse on the client side; Data is decoded
// lazily into the caller's result type.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// APIError is returned for every non-2xx response. Body holds the
// structured error when the server sent one; Raw is the undecoded body.
type APIError struct {
	Status int
	Body   models.ErrorBody
	Raw    string
}

func (e *APIError) Error() string {
	if e.Body.Error != "" {
		return fmt.Sprintf("feedback API request failed with status %d: %s", e.Status, e.Body.Error)
	}
	return fmt.Sprintf("feedback API request failed with status %d: %s", e.Status, e.Raw)
}
