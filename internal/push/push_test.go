package push

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lockboxhq/backend/internal/domain"
)

func TestValidateRegistration(t *testing.T) {
	require.NoError(t, ValidateRegistration(domain.PlatformIOS, "ExponentPushToken[abc]"))

	err := ValidateRegistration(domain.Platform("windows-phone"), "ExponentPushToken[abc]")
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	err = ValidateRegistration(domain.PlatformAndroid, "not-a-valid-token")
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestGatewaySendEmptyTokensIsNoop(t *testing.T) {
	g := NewGateway(Config{URL: "http://127.0.0.1:0", Timeout: time.Second, RatePerSec: 10}, zerolog.Nop())
	require.NoError(t, g.Send(context.Background(), nil, "title", "body", nil))
}

func TestShardReceivedNotification(t *testing.T) {
	title, body, data := ShardReceivedNotification("Vault")
	require.NotEmpty(t, title)
	require.Contains(t, body, "Vault")
	require.Equal(t, "shard_received", data["type"])
}

func TestReminderNotificationTiers(t *testing.T) {
	_, body1, data1 := ReminderNotification("Vault", 1)
	require.Contains(t, body1, "haven't confirmed")
	require.Equal(t, 1, data1["reminderStep"])

	_, body2, _ := ReminderNotification("Vault", 2)
	require.Contains(t, body2, "Reminder")

	_, body3, _ := ReminderNotification("Vault", 3)
	require.Contains(t, body3, "Final reminder")
}
