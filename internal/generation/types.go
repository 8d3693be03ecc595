// Package generation calls an image-generation backend with bounded retries.
package generation

import "context"

// NegativePrompt steers the model away from unusable shots.
const NegativePrompt = "blurry, low quality, distorted, ugly"

// Request is the text-to-image body sent to the backend.
type Request struct {
	TaskType              string                `json:"taskType"`
	TextToImageParams     TextToImageParams     `json:"textToImageParams"`
	ImageGenerationConfig ImageGenerationConfig `json:"imageGenerationConfig"`
}

// TextToImageParams holds the prompt pair.
type TextToImageParams struct {
	Text         string `json:"text"`
	NegativeText string `json:"negativeText,omitempty"`
}

// ImageGenerationConfig fixes the image shape and sampling.
type ImageGenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int     `json:"seed"`
}

// NewRequest builds a single 512x512 image request for prompt.
func NewRequest(prompt string, seed int) *Request {
	return &Request{
		TaskType: "TEXT_IMAGE",
		TextToImageParams: TextToImageParams{
			Text:         prompt,
			NegativeText: NegativePrompt,
		},
		ImageGenerationConfig: ImageGenerationConfig{
			NumberOfImages: 1,
			Height:         512,
			Width:          512,
			CfgScale:       8.0,
			Seed:           seed,
		},
	}
}

// Response carries base64-encoded images as returned by the backend.
type Response struct {
	Images []string `json:"images"`
	Error  string   `json:"error,omitempty"`
}

// Backend performs one generation call. Implementations report service
// errors as *BackendError so the client can classify them.
type Backend interface {
	Invoke(ctx context.Context, req *Request) (*Response, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, req *Request) (*Response, error)

func (f BackendFunc) Invoke(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
