package notifications

import (
	"fmt"
	"strings"
)

type MessageKind string

const (
	NoneKind    MessageKind = ""
	ErrorKind   MessageKind = "ERROR"
	RequestKind MessageKind = "REQUEST"
)

// ParseMessageKind maps a MESSAGE_TYPE value to a kind.
// Unknown values mean no action buttons.
func ParseMessageKind(value string) MessageKind {
	switch MessageKind(value) {
	case ErrorKind:
		return ErrorKind
	case RequestKind:
		return RequestKind
	default:
		return NoneKind
	}
}

const StatusPass = "PASS"

// NotificationRequest holds every input of a notification.
// An empty status means the status was not provided.
type NotificationRequest struct {
	Title      string
	Project    string
	ProjectURL string
	Actor      string
	Repository string
	Ref        string
	IssueID    string
	IssueURL   string
	RunID      string
	RunURL     string
	Workflow   string

	BuildStatus  string
	TestStatus   string
	DeployStatus string

	Kind MessageKind

	Channel   string
	Timestamp string
}

// Validate reports every missing required field at once.
func (r NotificationRequest) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"title", r.Title},
		{"project", r.Project},
		{"channel", r.Channel},
		{"actor", r.Actor},
		{"repository", r.Repository},
		{"run id", r.RunID},
		{"issue id", r.IssueID},
	}

	var missing []string
	for _, field := range required {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// ConfigError is returned when required inputs are absent.
// It is never the result of a network call.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}
