package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.chat.sent", Subject("chat.sent"))
	assert.Equal(t, "events.subscription.activated", Subject("subscription.activated"))
}
