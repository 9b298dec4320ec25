package push

import "fmt"

// ShardReceivedNotification is the notification sent to every guardian of a
// box as soon as it locks.
func ShardReceivedNotification(boxName string) (title, body string, data map[string]any) {
	return "You've been entrusted with a Lockbox shard",
		fmt.Sprintf("%q has been locked and a secure shard has been sent to you.", boxName),
		map[string]any{"type": "shard_received", "boxName": boxName}
}

// ReminderNotification produces the title/body/data for reminder number n
// (1, 2, or >=3 select distinct wording).
func ReminderNotification(boxName string, n int) (title, body string, data map[string]any) {
	var body2 string
	switch {
	case n <= 1:
		body2 = fmt.Sprintf("You still haven't confirmed your shard for %q. Please take a moment to do so.", boxName)
	case n == 2:
		body2 = fmt.Sprintf("Reminder: your shard for %q is still waiting for confirmation.", boxName)
	default:
		body2 = fmt.Sprintf("Final reminder: %q is counting on you to confirm your shard.", boxName)
	}
	return "Lockbox reminder", body2, map[string]any{
		"type":         "reminder",
		"boxName":      boxName,
		"reminderStep": n,
	}
}
