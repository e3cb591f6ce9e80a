package common

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"

	"github.com/johanforsgren/forgereview/internal/domain"
)

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    interface{}
		wantMessage string
	}{
		{
			name:        "422 with message and string errors",
			status:      422,
			body:        `{"message":"Validation Failed","errors":["msg1","msg2"]}`,
			wantKind:    &domain.ValidationError{},
			wantMessage: "Validation Failed. msg1 AND msg2",
		},
		{
			name:        "422 with structured errors",
			status:      422,
			body:        `{"message":"Validation Failed","errors":[{"resource":"PullRequest","field":"base","code":"invalid","message":"Base branch does not exist"}]}`,
			wantKind:    &domain.ValidationError{},
			wantMessage: "Validation Failed. Base branch does not exist",
		},
		{
			name:        "422 with message only",
			status:      422,
			body:        `{"message":"Validation Failed"}`,
			wantKind:    &domain.ValidationError{},
			wantMessage: "Validation Failed",
		},
		{
			name:     "404 regardless of body",
			status:   404,
			body:     `{"message":"Not Found","documentation_url":"https://docs.github.com"}`,
			wantKind: &domain.NotFoundError{},
		},
		{
			name:     "401 is an auth error",
			status:   401,
			body:     `{"message":"Bad credentials"}`,
			wantKind: &domain.AuthError{},
		},
		{
			name:        "500 carries the raw body",
			status:      500,
			body:        `{"message":"Server Error"}`,
			wantKind:    &domain.UnknownError{},
			wantMessage: `unexpected response (status 500): {"message":"Server Error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyResponse("TEST", tt.status, []byte(tt.body))
			if err == nil {
				t.Fatal("ClassifyResponse() = nil, want classified error")
			}
			assertErrorKind(t, err, tt.wantKind)
			if tt.wantMessage != "" && err.Error() != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMessage)
			}
		})
	}
}

func TestClassifyResponse_SuccessStatusIsNil(t *testing.T) {
	for _, status := range []int{200, 201, 204} {
		if err := ClassifyResponse("TEST", status, nil); err != nil {
			t.Errorf("ClassifyResponse(%d) = %v, want nil", status, err)
		}
	}
}

func TestClassify_TypedGitHubError(t *testing.T) {
	ghErr := &github.ErrorResponse{
		Response: &http.Response{StatusCode: 422},
		Message:  "Validation Failed",
		Errors: []github.Error{
			{Message: "Review Can not request changes on your own pull request"},
		},
	}

	err := Classify("TEST", ghErr)

	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Classify() = %T, want *domain.ValidationError", err)
	}
	want := "Validation Failed. Review Can not request changes on your own pull request"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestClassify_TypedNotFound(t *testing.T) {
	ghErr := &github.ErrorResponse{
		Response: &http.Response{StatusCode: 404},
		Message:  "Not Found",
	}

	err := Classify("TEST", ghErr)

	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Classify() = %T, want *domain.NotFoundError", err)
	}
}

func TestClassify_TypedAzureDevOpsError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		wantKind interface{}
	}{
		{
			name:     "404 maps to not found",
			status:   404,
			message:  "TF401180: The requested pull request was not found.",
			wantKind: &domain.NotFoundError{},
		},
		{
			name:     "401 maps to auth",
			status:   401,
			message:  "Access denied.",
			wantKind: &domain.AuthError{},
		},
		{
			name:     "anything else stays unknown",
			status:   409,
			message:  "TF401181: The pull request cannot be edited.",
			wantKind: &domain.UnknownError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adoErr := azuredevops.WrappedError{
				StatusCode: &tt.status,
				Message:    &tt.message,
			}
			assertErrorKind(t, Classify("TEST", adoErr), tt.wantKind)
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "nil", err: nil},
		{name: "context canceled", err: context.Canceled},
		{name: "deadline exceeded", err: context.DeadlineExceeded},
		{name: "already classified", err: &domain.AuthError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("TEST", tt.err)
			if !errors.Is(got, tt.err) && got != tt.err {
				t.Errorf("Classify() = %v, want %v unchanged", got, tt.err)
			}
		})
	}
}

func TestClassify_TextFallback(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKind interface{}
	}{
		{
			name:     "embedded 422",
			text:     "POST https://api.example.com/repos/o/r/pulls/1/reviews: 422 Unprocessable Entity",
			wantKind: &domain.ValidationError{},
		},
		{
			name:     "embedded 404",
			text:     "GET https://api.example.com/repos/o/r/pulls/99: 404 Not Found",
			wantKind: &domain.NotFoundError{},
		},
		{
			name:     "bad credentials",
			text:     "GET https://api.example.com/user: 401 Bad credentials",
			wantKind: &domain.AuthError{},
		},
		{
			name:     "anything else",
			text:     "connection timeout",
			wantKind: &domain.UnknownError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("TEST", errors.New(tt.text))
			assertErrorKind(t, err, tt.wantKind)
		})
	}
}

func assertErrorKind(t *testing.T, err error, want interface{}) {
	t.Helper()
	var ok bool
	switch want.(type) {
	case *domain.ValidationError:
		var target *domain.ValidationError
		ok = errors.As(err, &target)
	case *domain.NotFoundError:
		var target *domain.NotFoundError
		ok = errors.As(err, &target)
	case *domain.AuthError:
		var target *domain.AuthError
		ok = errors.As(err, &target)
	case *domain.UnknownError:
		var target *domain.UnknownError
		ok = errors.As(err, &target)
	default:
		t.Fatalf("unsupported kind %T", want)
	}
	if !ok {
		t.Errorf("error = %T (%v), want kind %T", err, err, want)
	}
}
