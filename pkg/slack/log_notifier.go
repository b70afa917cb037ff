package slack

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// LogNotifier implements Notifier for development mode.
// It logs messages instead of posting them to a channel.
type LogNotifier struct {
	counter int64
}

// NewLogNotifier creates a new log-only notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// PostMessage logs the message and returns a fake timestamp
func (n *LogNotifier) PostMessage(ctx context.Context, msg Message) (string, error) {
	seq := atomic.AddInt64(&n.counter, 1)

	logrus.WithFields(logrus.Fields{
		"text":   msg.Text,
		"blocks": len(msg.Blocks),
	}).Info("Slack message (dev mode)")

	return fmt.Sprintf("dev-%d.000000", seq), nil
}

// GetName returns the name of this notifier
func (n *LogNotifier) GetName() string {
	return "Log (Development Mode)"
}
