package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/WeSplit-io/WeSplit-Backend/services/guard"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/metrics"
	notification_channel "github.com/WeSplit-io/WeSplit-Backend/services/notification/notification_channel"
	user_service "github.com/WeSplit-io/WeSplit-Backend/services/user"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
)

const (
	defaultFeedLimit = 50
	maxFeedLimit     = 200

	// DefaultRetention is how long read notifications stay in the inbox
	// before the pruning task clears them.
	DefaultRetention = 90 * 24 * time.Hour
)

// NotificationStore is the persistence surface for the inbox feed.
type NotificationStore interface {
	Insert(ctx context.Context, userID int64, notifType, title, body string, data json.RawMessage) (*Notification, error)
	GetByID(ctx context.Context, userID, notificationID int64) (*Notification, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	TakeAction(ctx context.Context, userID, notificationID int64, action string) (*Notification, error)
	Delete(ctx context.Context, userID, notificationID int64) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserDirectory resolves delivery endpoints for a user.
type UserDirectory interface {
	ExpoTokensFor(ctx context.Context, userIDs []int64) ([]user_service.PushToken, error)
	FetchUserByID(ctx context.Context, userID int64) (*user_service.User, error)
}

// Pusher fans one push notification out to a device token.
type Pusher interface {
	SendPush(info *notification_channel.PushNotificationInfo) error
}

// SMSSender delivers a plain text message to a phone number.
type SMSSender interface {
	SendSMS(phoneNumber, message string) error
}

// Mailer delivers transactional email.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// UserBroadcaster mirrors inbox rows onto the user's realtime feed.
type UserBroadcaster interface {
	BroadcastToUser(userID int64, payload []byte)
}

// NotificationService owns the inbox feed and its delivery fan-out. The
// inbox row is the source of truth: once it commits, channel failures are
// logged and swallowed so a Twilio or Expo outage never fails the calling
// operation. Any of the delivery collaborators may be nil when the
// deployment lacks credentials for that channel.
type NotificationService struct {
	repo      NotificationStore
	directory UserDirectory
	pusher    Pusher
	sms       SMSSender
	mailer    Mailer
	hub       UserBroadcaster
	guards    *guard.ActionGuard
	logger    *logging.Logger
}

func NewNotificationService(
	repo NotificationStore,
	directory UserDirectory,
	pusher Pusher,
	sms SMSSender,
	mailer Mailer,
	hub UserBroadcaster,
	guards *guard.ActionGuard,
	logger *logging.Logger,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		directory: directory,
		pusher:    pusher,
		sms:       sms,
		mailer:    mailer,
		hub:       hub,
		guards:    guards,
		logger:    logger,
	}
}

// Notify persists an inbox row for the user and fans it out: realtime feed,
// push to every registered device, SMS when the user has no devices at all.
// Only the row insert can fail the call.
func (n *NotificationService) Notify(ctx context.Context, userID int64, notifType, title, body string, data map[string]any) error {
	var payload json.RawMessage
	if len(data) > 0 {
		encoded, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encoding notification data: %w", err)
		}
		payload = encoded
	}

	row, err := n.repo.Insert(ctx, userID, notifType, title, body, payload)
	if err != nil {
		return err
	}

	n.broadcast(row)
	n.deliver(ctx, row, data)

	return nil
}

func (n *NotificationService) broadcast(row *Notification) {
	if n.hub == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"type":         "notification",
		"notification": row,
	})
	if err != nil {
		return
	}

	n.hub.BroadcastToUser(row.UserID, payload)
	metrics.RecordPushNotification(notification_channel.Realtime.String(), "sent")
}

func (n *NotificationService) deliver(ctx context.Context, row *Notification, data map[string]any) {
	if n.directory == nil {
		return
	}

	tokens, err := n.directory.ExpoTokensFor(ctx, []int64{row.UserID})
	if err != nil {
		n.logger.Error(fmt.Sprintf("could not resolve push tokens for user %d: %v", row.UserID, err))
		return
	}

	if len(tokens) == 0 {
		n.deliverSMS(ctx, row)
		return
	}

	if n.pusher == nil {
		return
	}

	info := &notification_channel.PushNotificationInfo{
		Title:    row.Title,
		Message:  row.Body,
		Provider: notification_channel.PushProviderExpo,
		Data:     stringifyData(data),
	}

	for _, token := range tokens {
		info.UserExpoToken = token.Token
		if err := n.pusher.SendPush(info); err != nil {
			metrics.RecordPushNotification(notification_channel.Expo.String(), "failed")
			n.logger.Warn(fmt.Sprintf("push to user %d device failed: %v", row.UserID, err))
			continue
		}
		metrics.RecordPushNotification(notification_channel.Expo.String(), "sent")
	}
}

func (n *NotificationService) deliverSMS(ctx context.Context, row *Notification) {
	if n.sms == nil {
		return
	}

	u, err := n.directory.FetchUserByID(ctx, row.UserID)
	if err != nil || u.PhoneNumber == "" {
		return
	}

	message := fmt.Sprintf("%s: %s", row.Title, row.Body)
	if err := n.sms.SendSMS(u.PhoneNumber, message); err != nil {
		metrics.RecordPushNotification(notification_channel.SMS.String(), "failed")
		n.logger.Warn(fmt.Sprintf("sms fallback for user %d failed: %v", row.UserID, err))
		return
	}

	metrics.RecordPushNotification(notification_channel.SMS.String(), "sent")
}

const inviteEmailTemplate = `<p>{{.InviterName}} invited you to split expenses in <strong>{{.GroupName}}</strong>.</p>
<p><a href="wesplit://join/{{.Code}}">Open the invite</a> or enter code <strong>{{.Code}}</strong> in the app.</p>`

// InviteEmail sends a group invite to someone who may not have the app yet.
// The code rides in both the deep link and the plain text so the recipient
// can join either way. Inviter and group names are user-supplied, so the
// body goes through the HTML templater rather than Sprintf.
func (n *NotificationService) InviteEmail(ctx context.Context, to, inviterName, groupName, code string) error {
	if n.mailer == nil {
		return fmt.Errorf("email delivery is not configured")
	}

	subject := fmt.Sprintf("%s invited you to %s on WeSplit", inviterName, groupName)
	body, err := utils.RenderEmailTemplate(inviteEmailTemplate, struct {
		InviterName string
		GroupName   string
		Code        string
	}{inviterName, groupName, code})
	if err != nil {
		return err
	}

	if err := n.mailer.SendEmail(ctx, to, subject, body); err != nil {
		metrics.RecordPushNotification(notification_channel.Email.String(), "failed")
		return err
	}

	metrics.RecordPushNotification(notification_channel.Email.String(), "sent")
	return nil
}

func (n *NotificationService) Feed(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	return n.repo.ListByUser(ctx, userID, limit)
}

func (n *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return n.repo.UnreadCount(ctx, userID)
}

func (n *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return n.repo.MarkRead(ctx, userID, notificationID)
}

func (n *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return n.repo.MarkAllRead(ctx, userID)
}

// TakeAction records the user's tap on an actionable notification. The guard
// absorbs double-taps on one device; the store's action_taken predicate
// absorbs races across devices. Both collapse to ErrActionAlreadyTaken,
// which callers treat as a benign no-op.
func (n *NotificationService) TakeAction(ctx context.Context, userID, notificationID int64, action string) (*Notification, error) {
	if action == "" {
		return nil, fmt.Errorf("action is required")
	}

	var updated *Notification
	err := n.guards.Do(guard.NotificationActionKey(notificationID, action), func() error {
		row, err := n.repo.TakeAction(ctx, userID, notificationID, action)
		if err != nil {
			return err
		}
		updated = row
		return nil
	})
	if errors.Is(err, guard.ErrDuplicateAction) {
		metrics.RecordGuardRejection("notification-action")
		return nil, ErrActionAlreadyTaken
	}
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (n *NotificationService) Delete(ctx context.Context, userID, notificationID int64) error {
	return n.repo.Delete(ctx, userID, notificationID)
}

// PruneRead is run by the task scheduler.
func (n *NotificationService) PruneRead(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}

	removed, err := n.repo.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		n.logger.Info(fmt.Sprintf("pruned %d read notifications", removed))
	}

	return removed, nil
}

func stringifyData(data map[string]any) map[string]string {
	if len(data) == 0 {
		return nil
	}

	out := make(map[string]string, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
