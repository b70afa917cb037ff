package sms

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// LogGateway is a development-mode Gateway that logs messages instead of
// sending them. Wired in when SMS_MODE is not "production".
type LogGateway struct {
	logger *logrus.Logger
	sent   int
}

// NewLogGateway creates a new logging gateway
func NewLogGateway(logger *logrus.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

// SendMessage logs the message and reports success
func (g *LogGateway) SendMessage(_ context.Context, to, message string) (string, error) {
	g.sent++
	g.logger.WithFields(logrus.Fields{
		"to":     to,
		"length": len(message),
	}).Info("SMS gateway in dev mode, message not sent")
	return fmt.Sprintf("dev-%d", g.sent), nil
}

// GetName returns the name of this SMS gateway
func (g *LogGateway) GetName() string {
	return "Development Log Gateway"
}
