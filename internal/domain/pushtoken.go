package domain

import (
	"strings"
	"time"
)

// Platform identifies the mobile OS a PushToken was registered from.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

func (p Platform) Valid() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

// ExponentPushTokenPrefix is the literal prefix every valid push token must
// carry; the server never validates anything else about
// the opaque token value.
const ExponentPushTokenPrefix = "ExponentPushToken["

// PushToken is a user's registered device token for the push gateway.
type PushToken struct {
	UserID    string    `json:"userId"`
	Token     string    `json:"pushToken"`
	Platform  Platform  `json:"platform"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidToken reports whether token carries the required Expo-style prefix.
func ValidToken(token string) bool {
	return strings.HasPrefix(token, ExponentPushTokenPrefix)
}
