package mqtt_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/benmeehan/safezone-agent/internal/mocks"
	"github.com/benmeehan/safezone-agent/pkg/mqtt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type pendingToken struct {
	mocks.DoneToken
	done chan struct{}
}

func (t *pendingToken) Done() <-chan struct{} { return t.done }

func TestPublishJSON_Success(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	client.On("Publish", "kids/alerts", byte(1), false, mock.MatchedBy(func(p []byte) bool {
		var body map[string]string
		return json.Unmarshal(p, &body) == nil && body["title"] == "hi"
	})).Return(mocks.NewDoneToken(nil))

	err := mqtt.PublishJSON(context.Background(), client, "kids/alerts", 1, false, map[string]string{"title": "hi"})
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestPublishJSON_TokenError(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	client.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.NewDoneToken(errors.New("not connected")))

	err := mqtt.PublishJSON(context.Background(), client, "kids/alerts", 1, false, struct{}{})
	assert.EqualError(t, err, "not connected")
}

func TestPublishJSON_ContextCancelled(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	client.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&pendingToken{done: make(chan struct{})})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mqtt.PublishJSON(ctx, client, "kids/alerts", 1, false, struct{}{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublishJSON_MarshalError(t *testing.T) {
	client := new(mocks.MockMQTTClient)

	err := mqtt.PublishJSON(context.Background(), client, "kids/alerts", 1, false, make(chan int))
	assert.Error(t, err)
	client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
