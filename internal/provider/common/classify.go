package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"

	"github.com/johanforsgren/forgereview/internal/domain"
	"github.com/johanforsgren/forgereview/internal/logger"
)

// errorEnvelope is the JSON error body GitHub-style forges return. The
// errors array mixes plain strings with structured entries, so both forms
// are accepted.
type errorEnvelope struct {
	Message string            `json:"message"`
	Errors  []json.RawMessage `json:"errors"`
}

type errorDetail struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// ClassifyResponse maps a transport-level status and raw body onto one of
// the domain error kinds. Every classified error is logged with its origin
// and the untouched payload before being returned; nothing is retried here.
func ClassifyResponse(origin string, status int, body []byte) error {
	err := classify(status, body)
	if err != nil {
		logger.LogError(origin, string(body), err)
	}
	return err
}

// Classify maps an error returned by a forge client library onto the domain
// taxonomy. Typed response errors are classified by their status and body;
// context errors and already-classified errors pass through untouched;
// anything else becomes an UnknownError carrying the original text.
func Classify(origin string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isClassified(err) {
		return err
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		status := 0
		if ghErr.Response != nil {
			status = ghErr.Response.StatusCode
		}
		classified := classifyGitHub(status, ghErr)
		logger.LogError(origin, err.Error(), classified)
		return classified
	}

	var adoErr azuredevops.WrappedError
	if errors.As(err, &adoErr) {
		classified := classifyAzureDevOps(adoErr)
		logger.LogError(origin, err.Error(), classified)
		return classified
	}

	classified := classifyText(err.Error())
	logger.LogError(origin, err.Error(), classified)
	return classified
}

func classify(status int, body []byte) error {
	switch status {
	case http.StatusUnprocessableEntity:
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return &domain.ValidationError{Message: strings.TrimSpace(string(body))}
		}
		return &domain.ValidationError{
			Message:  envelope.Message,
			Messages: decodeErrorMessages(envelope.Errors),
		}
	case http.StatusNotFound:
		return &domain.NotFoundError{}
	case http.StatusUnauthorized:
		return &domain.AuthError{}
	default:
		if status >= 200 && status < 300 {
			return nil
		}
		return &domain.UnknownError{Status: status, Raw: string(body)}
	}
}

func classifyGitHub(status int, ghErr *github.ErrorResponse) error {
	switch status {
	case http.StatusUnprocessableEntity:
		messages := make([]string, 0, len(ghErr.Errors))
		for _, detail := range ghErr.Errors {
			if msg := detailMessage(detail.Message, detail.Resource, detail.Field, detail.Code); msg != "" {
				messages = append(messages, msg)
			}
		}
		return &domain.ValidationError{Message: ghErr.Message, Messages: messages}
	case http.StatusNotFound:
		return &domain.NotFoundError{}
	case http.StatusUnauthorized:
		return &domain.AuthError{}
	default:
		return &domain.UnknownError{Status: status, Raw: ghErr.Message}
	}
}

func classifyAzureDevOps(adoErr azuredevops.WrappedError) error {
	status := GetInt(adoErr.StatusCode)
	message := GetString(adoErr.Message)
	switch status {
	case http.StatusUnprocessableEntity:
		return &domain.ValidationError{Message: message}
	case http.StatusNotFound:
		return &domain.NotFoundError{}
	case http.StatusUnauthorized:
		return &domain.AuthError{}
	default:
		return &domain.UnknownError{Status: status, Raw: message}
	}
}

// classifyText is the fallback for clients that surface plain string errors
// instead of typed responses. It sniffs the status the same way the error
// text embeds it.
func classifyText(text string) error {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "422") || strings.Contains(lower, "unprocessable"):
		return &domain.ValidationError{Message: text}
	case strings.Contains(text, "404") || strings.Contains(lower, "not found"):
		return &domain.NotFoundError{}
	case strings.Contains(text, "401") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "bad credentials"):
		return &domain.AuthError{}
	default:
		return &domain.UnknownError{Raw: text}
	}
}

func decodeErrorMessages(raw []json.RawMessage) []string {
	messages := make([]string, 0, len(raw))
	for _, entry := range raw {
		var plain string
		if err := json.Unmarshal(entry, &plain); err == nil {
			if plain != "" {
				messages = append(messages, plain)
			}
			continue
		}
		var detail errorDetail
		if err := json.Unmarshal(entry, &detail); err == nil {
			if msg := detailMessage(detail.Message, detail.Resource, detail.Field, detail.Code); msg != "" {
				messages = append(messages, msg)
			}
		}
	}
	return messages
}

func detailMessage(message, resource, field, code string) string {
	if message != "" {
		return message
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{resource, field, code} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func isClassified(err error) bool {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		auth       *domain.AuthError
		unknown    *domain.UnknownError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &notFound) ||
		errors.As(err, &auth) ||
		errors.As(err, &unknown)
}
