package notification_channel

import (
	"context"
	"fmt"

	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"google.golang.org/api/option"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

type PushProvider string

const (
	PushProviderFCM  = PushProvider("fcm")
	PushProviderExpo = PushProvider("expo")
)

type Config struct {
	GoogleAppCredentials string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type PushNotificationInfo struct {
	Title          string            `json:"title"`
	Message        string            `json:"message"`
	Provider       PushProvider      `json:"provider"`
	UserExpoToken  string            `json:"user_expo_token"`
	UserFCMToken   string            `json:"user_fcm_token"`
	Data           map[string]string `json:"data"`
	Badge          int               `json:"badge"`
	AnalyticsLabel string            `json:"analytics"`
}

type PushNotificationService struct {
	client *expo.PushClient
	app    *firebase.App
	logger *logging.Logger
}

// NewPushNotificationService sets up both carriers. Expo is the default for
// WeSplit builds; FCM only activates when Google credentials are configured,
// so a missing credentials file degrades to Expo-only rather than failing.
func NewPushNotificationService(logger *logging.Logger) *PushNotificationService {

	var config Config
	err := utils.LoadCustomConfig(utils.EnvPath, &config)
	if err != nil {
		logger.Error(fmt.Sprintf("Error loading push config: %v", err))
	}

	var app *firebase.App
	if config.GoogleAppCredentials != "" {
		opt := option.WithCredentialsFile(config.GoogleAppCredentials)
		app, err = firebase.NewApp(context.Background(), nil, opt)
		if err != nil {
			logger.Error(fmt.Sprintf("Error starting firebase App: %v", err))
			app = nil
		}
	}

	// Create a new Expo SDK client
	client := expo.NewPushClient(nil)

	return &PushNotificationService{
		client: client,
		app:    app,
		logger: logger,
	}
}

func (p *PushNotificationService) SendPush(info *PushNotificationInfo) error {

	if info.Provider == PushProviderExpo {
		err := p.SendPushExpo(info)
		return err
	}

	if p.app == nil {
		return fmt.Errorf("fcm is not configured for this deployment")
	}

	client, err := p.app.Messaging(context.Background())
	if err != nil {
		return err
	}

	newMessage := messaging.Message{
		Token: info.UserFCMToken,
		Notification: &messaging.Notification{
			Title: info.Title,
			Body:  info.Message,
		},
		Data: info.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Color: "#a5ea6c",
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: info.Title,
						Body:  info.Message,
					},
					Badge: &info.Badge,
					Sound: "default",
				},
			},
			FCMOptions: &messaging.APNSFCMOptions{
				AnalyticsLabel: info.AnalyticsLabel,
			},
		},
	}

	didSend, err := client.Send(context.Background(), &newMessage)
	if err != nil {
		return err
	}

	p.logger.Info(fmt.Sprintf("Did send: %v", didSend))

	return nil
}

func (p *PushNotificationService) SendPushExpo(info *PushNotificationInfo) error {
	response, err := p.client.Publish(
		&expo.PushMessage{
			To:       []expo.ExponentPushToken{expo.ExponentPushToken(info.UserExpoToken)},
			Title:    info.Title,
			Body:     info.Message,
			Data:     info.Data,
			Sound:    "default",
			Priority: expo.DefaultPriority,
		},
	)

	// Check errors
	if err != nil {
		return err
	}

	// Validate responses
	if response.ValidateResponse() != nil {
		p.logger.Error(fmt.Sprintf("failed: %v", response.ValidateResponse()))
		return fmt.Errorf("failed: %v", response.PushMessage.To)
	}

	return nil

}
