package config

import (
	"fmt"
	"strings"

	"github.com/gimlet-io/chatops/pkg/notifications"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const DefaultIssueTrackerURL = "https://hub.toumoro.com/issues"

// Environ returns the settings from the environment.
func Environ() (*Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	defaults(&cfg)

	return &cfg, err
}

func defaults(c *Config) {
	if c.Github.APIURL == "" {
		c.Github.APIURL = notifications.DefaultGithubAPIURL
	}
	if c.Notification.IssueTrackerURL == "" {
		c.Notification.IssueTrackerURL = DefaultIssueTrackerURL
	}
	if c.Layout.Name == "" {
		c.Layout.Name = notifications.FullLayoutName
	}
}

// String returns the configuration in string format.
func (c *Config) String() string {
	out, _ := yaml.Marshal(c)
	return string(out)
}

type Config struct {
	Logging      Logging
	Slack        Slack
	Github       Github
	Notification Notification
	Layout       Layout
}

// Logging provides the logging configuration.
type Logging struct {
	Debug  bool `envconfig:"DEBUG"`
	Trace  bool `envconfig:"TRACE"`
	Color  bool `envconfig:"LOGS_COLOR"`
	Pretty bool `envconfig:"LOGS_PRETTY"`
	Text   bool `envconfig:"LOGS_TEXT"`
}

type Slack struct {
	Token     string `envconfig:"SLACK_API_TOKEN" yaml:"-"`
	Channel   string `envconfig:"SLACK_CHANNEL"`
	Timestamp string `envconfig:"SLACK_TIMESTAMP"`
	APIURL    string `envconfig:"SLACK_API_URL"`
}

type Github struct {
	Actor      string `envconfig:"GITHUB_ACTOR"`
	Repository string `envconfig:"GITHUB_REPOSITORY"`
	Workflow   string `envconfig:"WORKFLOW"`
	RunID      string `envconfig:"GITHUB_RUN_ID"`
	Ref        string `envconfig:"GITHUB_REF"`
	ServerURL  string `envconfig:"GITHUB_SERVER_URL"`
	APIURL     string `envconfig:"GITHUB_API_URL"`
}

type Notification struct {
	MessageType     string `envconfig:"MESSAGE_TYPE"`
	Title           string `envconfig:"TITLE"`
	ProjectName     string `envconfig:"PROJECT_NAME"`
	IssueID         string `envconfig:"ISSUE_ID"`
	IssueTrackerURL string `envconfig:"ISSUE_TRACKER_URL"`
	BuildStatus     string `envconfig:"BUILD_STATUS"`
	TestStatus      string `envconfig:"TEST_STATUS"`
	DeployStatus    string `envconfig:"DEPLOY_STATUS"`
}

// Layout selects a preset notification layout, labels override the preset's.
type Layout struct {
	Name         string `envconfig:"NOTIFICATION_LAYOUT"`
	RetryLabel   string `envconfig:"RETRY_LABEL"`
	ApproveLabel string `envconfig:"APPROVE_LABEL"`
	DenyLabel    string `envconfig:"DENY_LABEL"`
}

// Validate checks that every required variable is set and not empty.
// All missing variables are reported in one error.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"SLACK_API_TOKEN", c.Slack.Token},
		{"SLACK_CHANNEL", c.Slack.Channel},
		{"GITHUB_ACTOR", c.Github.Actor},
		{"GITHUB_REPOSITORY", c.Github.Repository},
		{"GITHUB_RUN_ID", c.Github.RunID},
		{"GITHUB_SERVER_URL", c.Github.ServerURL},
		{"TITLE", c.Notification.Title},
		{"PROJECT_NAME", c.Notification.ProjectName},
		{"ISSUE_ID", c.Notification.IssueID},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return &notifications.ConfigError{Missing: missing}
	}
	return nil
}

// NotificationLayout resolves the layout preset and applies the label overrides.
func (c *Config) NotificationLayout() (notifications.Layout, error) {
	layout, err := notifications.LayoutByName(c.Layout.Name)
	if err != nil {
		return layout, err
	}

	if c.Layout.RetryLabel != "" {
		layout.RetryLabel = c.Layout.RetryLabel
	}
	if c.Layout.ApproveLabel != "" {
		layout.ApproveLabel = c.Layout.ApproveLabel
	}
	if c.Layout.DenyLabel != "" {
		layout.DenyLabel = c.Layout.DenyLabel
	}
	if layout.PayloadURLStyle == notifications.AbsoluteURLs {
		layout.APIURL = c.Github.APIURL
	}

	return layout, nil
}

// Request builds the notification request, deriving the links from the GitHub settings.
func (c *Config) Request() notifications.NotificationRequest {
	server := strings.TrimSuffix(c.Github.ServerURL, "/")
	issueTracker := strings.TrimSuffix(c.Notification.IssueTrackerURL, "/")

	return notifications.NotificationRequest{
		Title:      c.Notification.Title,
		Project:    c.Notification.ProjectName,
		ProjectURL: fmt.Sprintf("%s/%s/tree/%s", server, c.Github.Repository, c.Github.Ref),
		Actor:      c.Github.Actor,
		Repository: c.Github.Repository,
		Ref:        c.Github.Ref,
		IssueID:    c.Notification.IssueID,
		IssueURL:   fmt.Sprintf("%s/%s", issueTracker, c.Notification.IssueID),
		RunID:      c.Github.RunID,
		RunURL:     fmt.Sprintf("%s/%s/actions/runs/%s", server, c.Github.Repository, c.Github.RunID),
		Workflow:   c.Github.Workflow,

		BuildStatus:  c.Notification.BuildStatus,
		TestStatus:   c.Notification.TestStatus,
		DeployStatus: c.Notification.DeployStatus,

		Kind: notifications.ParseMessageKind(c.Notification.MessageType),

		Channel:   c.Slack.Channel,
		Timestamp: c.Slack.Timestamp,
	}
}
