package notification_channel

// Channel names one delivery transport out of the notification fan-out.
// The values double as metric labels, so they stay lowercase and stable.
type Channel string

const (
	Expo     Channel = "expo"
	SMS      Channel = "sms"
	Email    Channel = "email"
	Realtime Channel = "realtime"
)

func (c Channel) String() string {
	return string(c)
}
