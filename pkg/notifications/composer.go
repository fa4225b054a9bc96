package notifications

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultGithubAPIURL = "https://api.github.com"

	workflowImageURL     = "https://avatars0.githubusercontent.com/u/44036562"
	workflowImageAltText = "GitHub Workflow"

	rerunPathFormat    = "/repos/%s/actions/runs/%s/rerun"
	dispatchPathFormat = "/repos/%s/actions/workflows/%s/dispatches"
)

var ErrMissingWorkflow = errors.New("WORKFLOW is required for REQUEST messages")

type PayloadURLStyle string

const (
	AbsoluteURLs PayloadURLStyle = "absolute"
	RelativeURLs PayloadURLStyle = "relative"
)

// Layout captures the choices where notification flavors differ.
type Layout struct {
	IncludeHeader   bool
	IncludeRunLink  bool
	PayloadURLStyle PayloadURLStyle
	// APIURL prefixes button payload URLs when PayloadURLStyle is absolute
	APIURL string

	RetryLabel   string
	ApproveLabel string
	DenyLabel    string
}

const (
	FullLayoutName    = "full"
	CompactLayoutName = "compact"
)

func FullLayout() Layout {
	return Layout{
		IncludeHeader:   true,
		IncludeRunLink:  true,
		PayloadURLStyle: AbsoluteURLs,
		APIURL:          DefaultGithubAPIURL,
		RetryLabel:      "Retry",
		ApproveLabel:    "Approve",
		DenyLabel:       "Deny",
	}
}

func CompactLayout() Layout {
	return Layout{
		IncludeHeader:   false,
		IncludeRunLink:  false,
		PayloadURLStyle: RelativeURLs,
		RetryLabel:      "Retry",
		ApproveLabel:    "Approval",
		DenyLabel:       "Deny",
	}
}

// LayoutByName returns a preset layout. An empty name is the full layout.
func LayoutByName(name string) (Layout, error) {
	switch strings.ToLower(name) {
	case "", FullLayoutName:
		return FullLayout(), nil
	case CompactLayoutName:
		return CompactLayout(), nil
	default:
		return Layout{}, errors.Errorf("unknown notification layout %q, use %s or %s", name, FullLayoutName, CompactLayoutName)
	}
}

type Composer struct {
	layout Layout
}

func NewComposer(layout Layout) *Composer {
	return &Composer{layout: layout}
}

func (c *Composer) BuildHeader(title string) Section {
	return Section{
		Type: HeaderSection,
		Text: fmt.Sprintf("*%s*", title),
	}
}

// BuildDetails lists the run details. The field order is part of the message look.
func (c *Composer) BuildDetails(project, projectURL, user, ref, issueID, issueURL, runID, runURL string) Section {
	fields := []Field{
		{Label: "Project Repo", Text: fmt.Sprintf("<%s|%s>", projectURL, project)},
		{Label: "Issue ID", Text: fmt.Sprintf("<%s|#%s>", issueURL, issueID)},
	}
	if c.layout.IncludeRunLink {
		fields = append(fields, Field{Label: "Workflow", Text: fmt.Sprintf("<%s|%s>", runURL, runID)})
	}
	fields = append(fields,
		Field{Label: "Ref", Text: ref},
		Field{Label: "From", Text: user},
	)

	return Section{
		Type:   DetailsSection,
		Fields: fields,
		Image: &Image{
			URL:     workflowImageURL,
			AltText: workflowImageAltText,
		},
	}
}

// BuildStatus always returns a section, even when no status was provided.
func (c *Composer) BuildStatus(buildStatus, testStatus, deployStatus string) Section {
	statuses := []struct {
		label  string
		status string
	}{
		{"Build", buildStatus},
		{"Tests", testStatus},
		{"Deploy", deployStatus},
	}

	lines := []StatusLine{}
	for _, s := range statuses {
		if s.status == "" {
			continue
		}
		lines = append(lines, StatusLine{Label: s.label, Passed: s.status == StatusPass})
	}

	return Section{
		Type:  StatusSection,
		Lines: lines,
	}
}

type dispatchPayload struct {
	Ref    string         `json:"ref"`
	Inputs dispatchInputs `json:"inputs"`
}

type dispatchInputs struct {
	IsApproved string `json:"is_approved"`
}

// BuildActions returns nil when the message kind carries no buttons.
func (c *Composer) BuildActions(kind MessageKind, repository, ref, runID, workflow string) (*Section, error) {
	switch kind {
	case ErrorKind:
		return &Section{
			Type: ActionsSection,
			Buttons: []Button{
				{
					Label:    c.layout.RetryLabel,
					ActionID: "retry",
					Action:   ButtonAction{URLCall: c.apiURL(fmt.Sprintf(rerunPathFormat, repository, runID))},
					Style:    DefaultStyle,
				},
			},
		}, nil
	case RequestKind:
		if workflow == "" {
			return nil, ErrMissingWorkflow
		}
		dispatchURL := c.apiURL(fmt.Sprintf(dispatchPathFormat, repository, workflow))

		approve, err := json.Marshal(dispatchPayload{Ref: ref, Inputs: dispatchInputs{IsApproved: "1"}})
		if err != nil {
			return nil, err
		}
		deny, err := json.Marshal(dispatchPayload{Ref: ref, Inputs: dispatchInputs{IsApproved: "0"}})
		if err != nil {
			return nil, err
		}

		return &Section{
			Type: ActionsSection,
			Buttons: []Button{
				{
					Label:    c.layout.ApproveLabel,
					ActionID: "approval",
					Action:   ButtonAction{URLCall: dispatchURL, Payload: string(approve)},
					Style:    PrimaryStyle,
				},
				{
					Label:    c.layout.DenyLabel,
					ActionID: "denial",
					Action:   ButtonAction{URLCall: dispatchURL, Payload: string(deny)},
					Style:    DangerStyle,
				},
			},
		}, nil
	default:
		return nil, nil
	}
}

func (c *Composer) apiURL(path string) string {
	if c.layout.PayloadURLStyle == RelativeURLs {
		return path
	}
	base := c.layout.APIURL
	if base == "" {
		base = DefaultGithubAPIURL
	}
	return strings.TrimSuffix(base, "/") + path
}

// Compose validates the request and assembles the sections in their fixed order:
// header, details, status, actions.
func (c *Composer) Compose(r NotificationRequest) (*Notification, error) {
	err := r.Validate()
	if err != nil {
		return nil, err
	}

	actions, err := c.BuildActions(r.Kind, r.Repository, r.Ref, r.RunID, r.Workflow)
	if err != nil {
		return nil, err
	}

	sections := []Section{}
	if c.layout.IncludeHeader {
		sections = append(sections, c.BuildHeader(r.Title))
	}
	sections = append(sections,
		c.BuildDetails(r.Project, r.ProjectURL, r.Actor, r.Ref, r.IssueID, r.IssueURL, r.RunID, r.RunURL),
		c.BuildStatus(r.BuildStatus, r.TestStatus, r.DeployStatus),
	)
	if actions != nil {
		sections = append(sections, *actions)
	}

	return &Notification{
		Title:    r.Title,
		Sections: sections,
	}, nil
}
