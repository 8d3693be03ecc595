// Package bedrock invokes the Titan image model through Amazon Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"petfood/internal/generation"
)

// DefaultModelID is the Titan Image Generator v2 model.
const DefaultModelID = "amazon.titan-image-generator-v2:0"

// ErrMissingClient indicates the backend was built without a runtime client.
var ErrMissingClient = errors.New("bedrock: runtime client is required")

// InvokeModelAPI is the slice of the Bedrock runtime client the backend uses.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Options configures the backend.
type Options struct {
	API     InvokeModelAPI
	ModelID string
	Logger  *zerolog.Logger
}

// Backend implements generation.Backend over Bedrock InvokeModel.
type Backend struct {
	api     InvokeModelAPI
	modelID string
	logger  zerolog.Logger
}

// New builds a Backend.
func New(opts Options) (*Backend, error) {
	if opts.API == nil {
		return nil, ErrMissingClient
	}
	modelID := strings.TrimSpace(opts.ModelID)
	if modelID == "" {
		modelID = DefaultModelID
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Backend{api: opts.API, modelID: modelID, logger: logger}, nil
}

// NewFromConfig builds a Backend from a loaded AWS config.
func NewFromConfig(cfg aws.Config, modelID string, logger *zerolog.Logger) (*Backend, error) {
	return New(Options{API: bedrockruntime.NewFromConfig(cfg), ModelID: modelID, Logger: logger})
}

// ModelID reports the model the backend invokes.
func (b *Backend) ModelID() string { return b.modelID }

func (b *Backend) Invoke(ctx context.Context, req *generation.Request) (*generation.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("bedrock: encode request: %w", err)
	}

	out, err := b.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, translateError(err)
	}

	var resp generation.Response
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("bedrock: decode response: %w", err)
	}
	b.logger.Debug().Str("model", b.modelID).Int("images", len(resp.Images)).Msg("bedrock: invoke completed")
	return &resp, nil
}

// translateError maps SDK API errors onto generation.BackendError so the
// retry loop can classify them by code. Other errors pass through unchanged.
func translateError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	be := &generation.BackendError{
		Code:    apiErr.ErrorCode(),
		Message: apiErr.ErrorMessage(),
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		be.StatusCode = respErr.HTTPStatusCode()
	}
	return be
}
