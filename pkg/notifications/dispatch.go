package notifications

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Receipt identifies the chat message that was written.
type Receipt struct {
	Channel   string
	Timestamp string
	Updated   bool
}

type Transport interface {
	PostMessage(ctx context.Context, channel string, notification *Notification) (*Receipt, error)
	UpdateMessage(ctx context.Context, channel string, timestamp string, notification *Notification) (*Receipt, error)
}

// Dispatch updates the message at timestamp, or posts a new one when there is
// no timestamp. A failed update falls back to a single post of the same content;
// the fallback message is unrelated to the one that could not be updated.
func Dispatch(ctx context.Context, transport Transport, notification *Notification, channel string, timestamp string) (*Receipt, error) {
	if timestamp != "" {
		receipt, err := transport.UpdateMessage(ctx, channel, timestamp, notification)
		if err == nil {
			return receipt, nil
		}
		logrus.WithError(err).Warnf("could not update message %s in %s, posting a new one", timestamp, channel)
	}

	receipt, err := transport.PostMessage(ctx, channel, notification)
	if err != nil {
		return nil, errors.WithMessage(err, "could not post message")
	}
	return receipt, nil
}
