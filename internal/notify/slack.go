package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/slack-go/slack"

	"github.com/fleetpulse/fleetpulse/internal/database"
)

// slackAPI is the part of *slack.Client the notifier uses
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
}

// SlackNotifier posts device notifications to one Slack channel
type SlackNotifier struct {
	client   slackAPI
	resolver *ChannelResolver
	throttle *throttle
	channel  string
}

// NewSlackNotifier creates a notifier posting with botToken to channel, which
// may be a channel ID or a name.
func NewSlackNotifier(botToken, channel string) (*SlackNotifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("slack bot token is required")
	}
	if channel == "" {
		return nil, fmt.Errorf("slack channel is required")
	}
	return newSlackNotifier(slack.New(botToken, slack.OptionDebug(false)), channel), nil
}

func newSlackNotifier(client slackAPI, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:   client,
		resolver: NewChannelResolver(client),
		throttle: newThrottle(slackPostsPerSecond, slackPostBurst),
		channel:  channel,
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

// Notify posts n as a colored attachment
func (s *SlackNotifier) Notify(ctx context.Context, n Notification) error {
	channelID, err := s.resolver.ResolveChannel(ctx, s.channel)
	if err != nil {
		return fmt.Errorf("resolve slack channel: %w", err)
	}
	if err := s.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("wait for slack rate limit: %w", err)
	}

	_, _, err = s.client.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(n.Title(), false),
		slack.MsgOptionAttachments(attachment(n)),
	)
	if err != nil {
		return fmt.Errorf("post slack message: %w", err)
	}
	return nil
}

func attachment(n Notification) slack.Attachment {
	customer := n.CustomerID
	if n.CustomerName != "" {
		customer = n.CustomerName + " (" + n.CustomerID + ")"
	}
	return slack.Attachment{
		Color: severityColor(n.Severity),
		Text:  n.Message,
		Fields: []slack.AttachmentField{
			{Title: "Customer", Value: customer, Short: true},
			{Title: "Device", Value: n.DeviceID, Short: true},
			{Title: "Health", Value: strconv.Itoa(n.HealthScore), Short: true},
			{Title: "Risk", Value: string(n.RiskLevel), Short: true},
		},
	}
}

func severityColor(s database.EventSeverity) string {
	switch s {
	case database.EventSeverityCritical, database.EventSeverityError:
		return "danger"
	case database.EventSeverityWarning:
		return "warning"
	default:
		return "good"
	}
}
