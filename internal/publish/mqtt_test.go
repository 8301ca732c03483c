package publish

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

type publishedMessage struct {
	topic    string
	qos      byte
	retained bool
	payload  interface{}
}

// fakeClient records publish calls. The embedded interface covers the methods
// the publisher never touches.
type fakeClient struct {
	mqtt.Client

	connectErr error

	mu           sync.Mutex
	published    []publishedMessage
	disconnected chan uint
}

func newFakeClient() *fakeClient {
	return &fakeClient{disconnected: make(chan uint, 1)}
}

func (c *fakeClient) Connect() mqtt.Token {
	return &fakeToken{err: c.connectErr}
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, publishedMessage{topic, qos, retained, payload})
	return &fakeToken{}
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.disconnected <- quiesce
}

func testPublisher(client mqtt.Client) *MQTTPublisher {
	p := NewMQTTPublisher(Config{Host: "localhost", Port: 1883}, slog.Default())
	p.newClient = func(*mqtt.ClientOptions) mqtt.Client { return client }
	return p
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := newFakeClient()
	p := testPublisher(client)

	err := p.Publish([]Message{
		{Topic: "laundry-machine/running", Payload: "true"},
		{Topic: "laundry-machine/time-remaining", Payload: "5400"},
	})
	require.NoError(t, err)

	select {
	case <-client.disconnected:
	case <-time.After(DefaultDrainWindow + time.Second):
		t.Fatal("drain never disconnected")
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	require.Len(t, client.published, 2)
	for _, m := range client.published {
		assert.Equal(t, byte(1), m.qos)
		assert.False(t, m.retained)
	}
	assert.Equal(t, "laundry-machine/running", client.published[0].topic)
	assert.Equal(t, "true", client.published[0].payload)
	assert.Equal(t, "laundry-machine/time-remaining", client.published[1].topic)
	assert.Equal(t, "5400", client.published[1].payload)
}

func TestMQTTPublisher_ConnectError(t *testing.T) {
	client := newFakeClient()
	client.connectErr = errors.New("connection refused")
	p := testPublisher(client)

	err := p.Publish([]Message{{Topic: "laundry-machine/running", Payload: "true"}})

	assert.ErrorContains(t, err, "connection refused")
	client.mu.Lock()
	defer client.mu.Unlock()
	assert.Empty(t, client.published, "nothing publishes on a failed connect")
}

func TestMQTTPublisher_EmptyBatchStillDisconnects(t *testing.T) {
	client := newFakeClient()
	p := testPublisher(client)

	require.NoError(t, p.Publish(nil))

	select {
	case <-client.disconnected:
	case <-time.After(DefaultDrainWindow + time.Second):
		t.Fatal("drain never disconnected")
	}
}

func TestNewMQTTPublisher_DefaultDrainWindow(t *testing.T) {
	p := NewMQTTPublisher(Config{Host: "localhost", Port: 1883}, slog.Default())
	assert.Equal(t, DefaultDrainWindow, p.cfg.DrainWindow)

	p = NewMQTTPublisher(Config{Host: "localhost", Port: 1883, DrainWindow: time.Second}, slog.Default())
	assert.Equal(t, time.Second, p.cfg.DrainWindow)
}
