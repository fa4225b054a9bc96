package notifications

import "encoding/json"

type SectionType string

const (
	HeaderSection  SectionType = "header"
	DetailsSection SectionType = "details"
	StatusSection  SectionType = "status"
	ActionsSection SectionType = "actions"
)

// Section is one visually distinct block of a notification.
// Only the fields that belong to its Type are set.
type Section struct {
	Type SectionType

	// header
	Text string

	// details
	Fields []Field
	Image  *Image

	// status
	Lines []StatusLine

	// actions
	Buttons []Button
}

type Field struct {
	Label string
	Text  string
}

type Image struct {
	URL     string
	AltText string
}

type StatusLine struct {
	Label  string
	Passed bool
}

type ButtonStyle string

const (
	DefaultStyle ButtonStyle = ""
	PrimaryStyle ButtonStyle = "primary"
	DangerStyle  ButtonStyle = "danger"
)

type Button struct {
	Label    string
	ActionID string
	Action   ButtonAction
	Style    ButtonStyle
}

// ButtonAction is what the interactivity backend calls when the button is pressed.
// Payload is the serialized request body, empty when the call has none.
type ButtonAction struct {
	URLCall string `json:"url_call"`
	Payload string `json:"payload,omitempty"`
}

// Value returns the serialized action, as carried in the button value.
func (b Button) Value() (string, error) {
	value, err := json.Marshal(b.Action)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// Notification is a fully composed, transport ready message.
type Notification struct {
	Title    string
	Sections []Section
}
