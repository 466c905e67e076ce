package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/systmms/secretsync/pkg/filestore"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a manifest error with helpful context
type ConfigError struct {
	Path       string
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Path != "" {
		msg += fmt.Sprintf(" in %s", e.Path)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// Explain decorates a sync failure with a suggestion for the user.
//
// The original error stays reachable through Unwrap so callers can still
// test for secretstore.NotFoundError and friends.
func Explain(backend string, err error) error {
	if err == nil {
		return nil
	}

	var userErr UserError
	if errors.As(err, &userErr) {
		return err
	}
	var cfgErr ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}

	suggestion := Suggestion(backend, err)
	if suggestion == "" {
		return err
	}

	return UserError{
		Message:    err.Error(),
		Suggestion: suggestion,
		Err:        err,
	}
}

// Suggestion returns a hint for a failure from the given backend type, or
// an empty string when there is nothing useful to add.
func Suggestion(backend string, err error) string {
	if err == nil {
		return ""
	}

	if secretstore.IsNotFound(err) {
		return notFoundSuggestion(backend)
	}

	if filestore.IsNotFound(err) {
		return "Create the file or run 'secret-sync pull' to fetch it from the secret store"
	}

	switch backend {
	case "aws", "aws-ssm":
		if s := awsSuggestion(backend, err); s != "" {
			return s
		}
	case "gcp":
		if s := gcpSuggestion(err); s != "" {
			return s
		}
	case "akeyless":
		errStr := strings.ToLower(err.Error())
		if strings.Contains(errStr, "authentication") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "access id") {
			return "Set akeyless.access_id and akeyless.access_key, or export AKEYLESS_ACCESS_ID and AKEYLESS_ACCESS_KEY"
		}
	case "keyring":
		errStr := err.Error()
		if strings.Contains(errStr, "org.freedesktop") || strings.Contains(errStr, "dbus") {
			return "Start a Secret Service provider (gnome-keyring, KWallet) or choose another backend"
		}
	}

	// Generic suggestions
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return "The operation timed out. Check your network connection or raise backend.timeout_ms"
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Unable to connect. Check your network and the backend endpoint setting"
	}
	if strings.Contains(errStr, "permission denied") {
		return "Check file permissions or run with appropriate privileges"
	}

	return ""
}

func notFoundSuggestion(backend string) string {
	switch backend {
	case "aws":
		return "Verify the secret name and region, or push it first. List secrets with: 'aws secretsmanager list-secrets'"
	case "aws-ssm":
		return "Verify the parameter name and region, or push it first. List parameters with: 'aws ssm describe-parameters'"
	case "gcp":
		return "Verify the secret name and project, or push it first. List secrets with: 'gcloud secrets list'"
	case "akeyless":
		return "Verify the item path, or push it first. List items with: 'akeyless list-items'"
	default:
		return "Verify the secret name or push it first with 'secret-sync push'"
	}
}

func awsSuggestion(backend string, err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDeniedException", "AccessDenied", "UnrecognizedClientException":
			if backend == "aws-ssm" {
				return "Check IAM permissions for ssm:GetParameter and ssm:PutParameter"
			}
			return "Check IAM permissions for secretsmanager:GetSecretValue, CreateSecret and UpdateSecret"
		case "ThrottlingException":
			return "AWS rate limit exceeded. Wait a moment and try again"
		case "ExpiredTokenException":
			return "Your AWS session has expired. Refresh your credentials and try again"
		}
	}

	errStr := err.Error()
	if strings.Contains(errStr, "failed to retrieve credentials") || strings.Contains(errStr, "no EC2 IMDS role found") {
		return "Configure AWS credentials: 'aws configure', set AWS_PROFILE or use --profile"
	}

	return ""
}

func gcpSuggestion(err error) string {
	// FromError finds a gRPC status anywhere in the wrap chain.
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}

	switch st.Code() {
	case codes.PermissionDenied:
		return "Grant roles/secretmanager.admin (or secretAccessor and secretVersionAdder) to your identity"
	case codes.Unauthenticated:
		return "Run 'gcloud auth application-default login' or set credentials_file"
	case codes.ResourceExhausted:
		return "GCP quota exceeded. Wait a moment and try again"
	case codes.InvalidArgument:
		return "Check that secret names and tag keys follow GCP naming rules (lowercase letters, digits, '-' and '_')"
	}

	return ""
}
