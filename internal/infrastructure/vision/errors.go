package vision

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classifyGeminiError splits a generation error into a failure the API reported
// (non-empty reason) or a transport error. Exactly one is set.
func classifyGeminiError(target string, err error) (reason string, transportErr error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", &repository.TransportError{Target: target, Err: err}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Sprintf("request blocked: %v", blocked), nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return fmt.Sprintf("API error %d: %s", apiErr.Code, msg), nil
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled, codes.Unknown:
			return "", &repository.TransportError{Target: target, Err: err}
		default:
			return fmt.Sprintf("API error %s: %s", st.Code(), st.Message()), nil
		}
	}

	return "", &repository.TransportError{Target: target, Err: err}
}
