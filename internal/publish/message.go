// Package publish maps decoded marker values onto MQTT messages and ships
// them with a fire-and-forget policy.
package publish

import (
	"strconv"

	"github.com/laundrywatch/laundrywatch/internal/decode"
)

// TopicPrefix is the stable topic namespace for all published values.
const TopicPrefix = "laundry-machine/"

// TopicTimeRemaining carries the hour+minute aggregate, in seconds.
const TopicTimeRemaining = TopicPrefix + "time-remaining"

// Reserved marker names that feed the time-remaining aggregate.
const (
	markerHour   = "hour"
	markerMinute = "minute"
)

// Message is one topic/payload pair produced for a sampling pass.
type Message struct {
	Topic   string
	Payload string
}

// BuildMessages turns the decoded values of one pass into outbound messages.
//
// When both "hour" and "minute" decoded to non-negative integers they are
// replaced by a single time-remaining message holding (hour*60+minute)*60
// seconds. If the pairing does not hold, both publish individually like any
// other marker. The input map is not modified.
func BuildMessages(values map[string]decode.Value) []Message {
	remaining := make(map[string]decode.Value, len(values))
	for name, v := range values {
		remaining[name] = v
	}

	messages := make([]Message, 0, len(values))

	hour, hourOK := remaining[markerHour]
	minute, minuteOK := remaining[markerMinute]
	if hourOK && minuteOK && isNonNegativeInt(hour) && isNonNegativeInt(minute) {
		delete(remaining, markerHour)
		delete(remaining, markerMinute)

		seconds := (hour.Int*60 + minute.Int) * 60
		messages = append(messages, Message{
			Topic:   TopicTimeRemaining,
			Payload: strconv.FormatInt(seconds, 10),
		})
	}

	for name, v := range remaining {
		messages = append(messages, Message{
			Topic:   TopicPrefix + name,
			Payload: v.String(),
		})
	}

	return messages
}

func isNonNegativeInt(v decode.Value) bool {
	return v.Kind == decode.KindInteger && v.Int >= 0
}
