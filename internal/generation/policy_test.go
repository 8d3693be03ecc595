package generation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyDelay(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		attempt int
		jitter  float64
		want    time.Duration
	}{
		{-1, 0, time.Second},
		{0, 0, time.Second},
		{1, 0, 2 * time.Second},
		{5, 0, 32 * time.Second},
		{6, 0, 60 * time.Second},
		{40, 0, 60 * time.Second},
		{0, 0.1, 1100 * time.Millisecond},
		{0, -0.1, 900 * time.Millisecond},
		{0, 0.5, 1100 * time.Millisecond},
		{40, 0.1, 60 * time.Second},
		{40, -0.1, 54 * time.Second},
		{5, 0.1, 35200 * time.Millisecond},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d/%v", tc.attempt, tc.jitter), func(t *testing.T) {
			assert.Equal(t, tc.want, p.Delay(tc.attempt, tc.jitter))
		})
	}
}

func TestPolicyInitialDelay(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 100*time.Millisecond, p.InitialDelay(0))
	assert.Equal(t, 1050*time.Millisecond, p.InitialDelay(0.5))
	assert.Less(t, p.InitialDelay(0.999999), 2*time.Second+time.Millisecond)

	p.InitialJitterMax = 0
	assert.Equal(t, 100*time.Millisecond, p.InitialDelay(0.7))
}

func TestClassify(t *testing.T) {
	codes := DefaultPolicy().codeSet()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"throttling", &BackendError{Code: "ThrottlingException"}, true},
		{"quota", &BackendError{Code: "ServiceQuotaExceededException"}, true},
		{"model timeout", &BackendError{Code: "ModelTimeoutException"}, true},
		{"validation", &BackendError{Code: "ValidationException", Message: "connection"}, false},
		{"access denied", &BackendError{Code: "AccessDeniedException"}, false},
		{"wrapped code", fmt.Errorf("invoke: %w", &BackendError{Code: "InternalServerException"}), true},
		{"uncoded timeout", errors.New("i/o Timeout"), true},
		{"uncoded connection", errors.New("connection refused"), true},
		{"uncoded other", errors.New("boom"), false},
		{"no artifact", ErrNoArtifact, false},
		{"nil", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.err, codes))
		})
	}
}

func TestBackendErrorMessage(t *testing.T) {
	assert.Equal(t, "ThrottlingException: slow down", (&BackendError{Code: "ThrottlingException", Message: "slow down"}).Error())
	assert.Equal(t, "ThrottlingException", (&BackendError{Code: "ThrottlingException"}).Error())
	assert.Equal(t, "slow down", (&BackendError{Message: "slow down"}).Error())
}
