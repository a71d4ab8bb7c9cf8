package notification_channel

import (
	"fmt"

	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSNotificationService carries plain text messages over Twilio. It is the
// fallback path for users who never registered a push token.
type SMSNotificationService struct {
	client *twilio.RestClient
	from   string
	logger *logging.Logger
}

func NewSMSNotificationService(config *utils.Config, logger *logging.Logger) *SMSNotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   config.TwilioKeySid,
		Password:   config.TwilioKeySecret,
		AccountSid: config.TwilioAccountSid,
	})

	return &SMSNotificationService{
		client: client,
		from:   config.TwilioFromNumber,
		logger: logger,
	}
}

func (s *SMSNotificationService) SendSMS(phoneNumber, message string) error {
	if s.from == "" {
		return fmt.Errorf("no sending number configured")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(s.from)
	params.SetBody(message)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}

	if resp.Sid != nil {
		s.logger.Info(fmt.Sprintf("sms dispatched: %v", *resp.Sid))
	}

	return nil
}
