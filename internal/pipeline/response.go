package pipeline

import (
	"petfood/internal/domain"
)

// Response is returned to whatever invoked the pipeline.
type Response struct {
	StatusCode int  `json:"statusCode"`
	Body       Body `json:"body"`
}

// Body summarises a run for the invoker.
type Body struct {
	RunID          string                `json:"run_id,omitempty"`
	ItemID         string                `json:"item_id,omitempty"`
	Success        bool                  `json:"success"`
	Skipped        bool                  `json:"skipped,omitempty"`
	Message        string                `json:"message"`
	Stage          domain.Stage          `json:"stage,omitempty"`
	ImageKey       string                `json:"image_key,omitempty"`
	Artifact       *domain.ArtifactRef   `json:"artifact,omitempty"`
	Error          string                `json:"error,omitempty"`
	Retryable      bool                  `json:"retryable,omitempty"`
	Attempts       *domain.AttemptCounts `json:"attempts,omitempty"`
	CreationSource string                `json:"creation_source,omitempty"`
	PromptType     string                `json:"prompt_type,omitempty"`
}

// NewBody converts a run result into a response body.
func NewBody(res domain.Result) Body {
	b := Body{
		ItemID:         res.ItemID,
		Success:        res.Success,
		Skipped:        res.Skipped,
		Message:        res.Message,
		Stage:          res.Stage,
		Artifact:       res.Artifact,
		Retryable:      res.Retryable,
		CreationSource: res.CreationSource,
		PromptType:     res.PromptType,
	}
	if res.Artifact != nil {
		b.ImageKey = res.Artifact.StorageKey
	}
	if res.Err != nil {
		b.Error = res.Err.Error()
	}
	if res.Attempts != (domain.AttemptCounts{}) {
		attempts := res.Attempts
		b.Attempts = &attempts
	}
	return b
}
