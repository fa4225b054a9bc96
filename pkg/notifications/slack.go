package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

const (
	successGlyph = ":heavy_check_mark:"
	failureGlyph = ":x:"

	slackTimeout = 30 * time.Second
)

type SlackProvider struct {
	client *slack.Client
}

// NewSlackProvider creates a Slack transport. An empty apiURL keeps the
// slack-go default endpoint.
func NewSlackProvider(token string, apiURL string) *SlackProvider {
	options := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: slackTimeout}),
	}
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL = apiURL + "/"
		}
		options = append(options, slack.OptionAPIURL(apiURL))
	}

	return &SlackProvider{
		client: slack.New(token, options...),
	}
}

func (s *SlackProvider) PostMessage(ctx context.Context, channel string, notification *Notification) (*Receipt, error) {
	options, err := msgOptions(notification)
	if err != nil {
		return nil, err
	}

	respChannel, ts, err := s.client.PostMessageContext(ctx, channel, options...)
	if err != nil {
		return nil, errors.WithMessage(err, "chat.postMessage")
	}
	logrus.Debugf("posted message %s to %s", ts, respChannel)

	return &Receipt{Channel: respChannel, Timestamp: ts}, nil
}

func (s *SlackProvider) UpdateMessage(ctx context.Context, channel string, timestamp string, notification *Notification) (*Receipt, error) {
	options, err := msgOptions(notification)
	if err != nil {
		return nil, err
	}

	respChannel, ts, _, err := s.client.UpdateMessageContext(ctx, channel, timestamp, options...)
	if err != nil {
		return nil, errors.WithMessage(err, "chat.update")
	}
	logrus.Debugf("updated message %s in %s", ts, respChannel)

	return &Receipt{Channel: respChannel, Timestamp: ts, Updated: true}, nil
}

func msgOptions(notification *Notification) ([]slack.MsgOption, error) {
	blocks, err := AsSlackBlocks(notification)
	if err != nil {
		return nil, err
	}

	return []slack.MsgOption{
		slack.MsgOptionText(notification.Title, false),
		slack.MsgOptionBlocks(blocks...),
	}, nil
}

// AsSlackBlocks renders the notification sections as Slack Block Kit blocks.
func AsSlackBlocks(notification *Notification) ([]slack.Block, error) {
	blocks := []slack.Block{}
	for _, section := range notification.Sections {
		block, err := asSlackBlock(section)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func asSlackBlock(section Section) (slack.Block, error) {
	switch section.Type {
	case HeaderSection:
		return slack.NewSectionBlock(nil, []*slack.TextBlockObject{markdown(section.Text)}, nil), nil
	case DetailsSection:
		fields := []*slack.TextBlockObject{}
		for _, f := range section.Fields {
			fields = append(fields, markdown(fmt.Sprintf("*%s:*\n%s", f.Label, f.Text)))
		}
		var accessory *slack.Accessory
		if section.Image != nil {
			accessory = slack.NewAccessory(slack.NewImageBlockElement(section.Image.URL, section.Image.AltText))
		}
		return slack.NewSectionBlock(nil, fields, accessory), nil
	case StatusSection:
		text := ""
		for _, line := range section.Lines {
			glyph := failureGlyph
			if line.Passed {
				glyph = successGlyph
			}
			text += fmt.Sprintf("*%s*: %s\n", line.Label, glyph)
		}
		return slack.NewSectionBlock(nil, []*slack.TextBlockObject{markdown(text)}, nil), nil
	case ActionsSection:
		elements := []slack.BlockElement{}
		for _, b := range section.Buttons {
			value, err := b.Value()
			if err != nil {
				return nil, errors.WithMessagef(err, "cannot serialize %s button", b.ActionID)
			}
			button := slack.NewButtonBlockElement(
				b.ActionID,
				value,
				slack.NewTextBlockObject(slack.PlainTextType, b.Label, false, false),
			).WithStyle(slack.Style(b.Style))
			elements = append(elements, button)
		}
		return slack.NewActionBlock("", elements...), nil
	default:
		return nil, errors.Errorf("unknown section type %q", section.Type)
	}
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks slack.Blocks `json:"blocks"`
}

// AsSlackJSON renders the message payload the way it is sent to Slack.
func AsSlackJSON(notification *Notification) ([]byte, error) {
	blocks, err := AsSlackBlocks(notification)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(slackMessage{
		Text:   notification.Title,
		Blocks: slack.Blocks{BlockSet: blocks},
	}, "", "  ")
}
