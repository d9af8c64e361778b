// Package notify sends FCM push notifications when an event's engagement
// counters cross milestone thresholds.
package notify

import (
	"context"
	"fmt"
	"log"

	"eventease/backend/internal/domain"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// milestones lists the counts that trigger a notification, per metric.
var milestones = map[string][]int64{
	"saves":    {10, 50, 100, 500, 1000, 5000, 10000},
	"shares":   {10, 50, 100, 500, 1000},
	"comments": {10, 50, 100, 500, 1000},
}

const maxTitleLen = 30

// FCMNotifier notifies an event's owner through their registered device
// tokens.
type FCMNotifier struct {
	messaging *messaging.Client
	firestore *firestore.Client
}

func NewFCMNotifier(msg *messaging.Client, fs *firestore.Client) *FCMNotifier {
	return &FCMNotifier{messaging: msg, firestore: fs}
}

// IsMilestone reports whether count is exactly one of the metric's
// thresholds.
func (n *FCMNotifier) IsMilestone(metric string, count int64) bool {
	for _, threshold := range milestones[metric] {
		if count == threshold {
			return true
		}
	}
	return false
}

// MilestoneReached pushes a congratulation to the event owner's devices.
// Events without an owner (externally imported) are skipped.
func (n *FCMNotifier) MilestoneReached(ctx context.Context, event *domain.Event, metric string, count int64) error {
	if event.UserID == "" {
		return nil
	}

	tokens, err := n.ownerTokens(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("load owner tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	title, body := milestoneMessage(event.Title, metric, count)
	resp, err := n.messaging.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type":    "milestone",
			"eventId": event.ID,
			"metric":  metric,
			"count":   fmt.Sprintf("%d", count),
		},
	})
	if err != nil {
		return err
	}
	if resp.FailureCount > 0 {
		log.Printf("[notify] %d/%d milestone sends failed for event %s",
			resp.FailureCount, len(tokens), event.ID)
	}
	return nil
}

func (n *FCMNotifier) ownerTokens(ctx context.Context, userID string) ([]string, error) {
	doc, err := n.firestore.Collection("users").Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user struct {
		FCMTokens []string `firestore:"fcmTokens"`
	}
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	return user.FCMTokens, nil
}

func milestoneMessage(eventTitle, metric string, count int64) (title, body string) {
	if len(eventTitle) > maxTitleLen {
		eventTitle = eventTitle[:maxTitleLen] + "..."
	}

	switch metric {
	case "saves":
		title = "Your event is taking off!"
		body = fmt.Sprintf("%q has been saved %d times", eventTitle, count)
	case "shares":
		title = "People are sharing your event!"
		body = fmt.Sprintf("%q has been shared %d times", eventTitle, count)
	case "comments":
		title = "Your event is sparking conversation!"
		body = fmt.Sprintf("%q reached %d comments", eventTitle, count)
	default:
		title = "Milestone reached!"
		body = fmt.Sprintf("%q hit %d %s", eventTitle, count, metric)
	}
	return title, body
}
