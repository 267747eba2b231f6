package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/lildude/mapty/internal/model"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// Broker is the part of an MQTT client the provider uses. mqtt.Client
// satisfies it.
type Broker interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

// Command is a map instruction published for the browser client on
// <prefix>/map.
type Command struct {
	Op      string             `json:"op"`
	Map     MapHandle          `json:"map,omitempty"`
	Marker  MarkerHandle       `json:"marker,omitempty"`
	At      *model.Coordinates `json:"at,omitempty"`
	Zoom    int                `json:"zoom,omitempty"`
	Content string             `json:"content,omitempty"`
	Style   string             `json:"style,omitempty"`
}

// MQTT is a Provider that publishes map commands to a broker and receives
// map clicks from <prefix>/clicks. The browser page subscribed to the
// command topic does the actual drawing.
type MQTT struct {
	broker Broker
	prefix string
	log    logrus.FieldLogger

	mu      sync.Mutex
	handle  MapHandle
	markers map[MarkerHandle]bool
}

// NewMQTT returns a provider publishing under the given topic prefix.
func NewMQTT(broker Broker, prefix string, log logrus.FieldLogger) *MQTT {
	return &MQTT{broker: broker, prefix: prefix, log: log, markers: make(map[MarkerHandle]bool)}
}

// DialMQTT connects to the broker URL (e.g. tcp://localhost:1883) and returns
// a provider using that connection.
func DialMQTT(ctx context.Context, brokerURL, clientID, prefix string, log logrus.FieldLogger) (*MQTT, error) {
	client := mqtt.NewClient(clientOptions(brokerURL, clientID))

	if err := wait(ctx, client.Connect()); err != nil {
		return nil, fmt.Errorf("connecting to mqtt broker %s: %w", brokerURL, err)
	}
	log.WithField("broker", brokerURL).Info("connected to mqtt broker")
	return NewMQTT(client, prefix, log), nil
}

// clientOptions lets click handlers run outside the client's message loop,
// since a click ends in publishes that wait on that loop.
func clientOptions(brokerURL, clientID string) *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false)
}

func (p *MQTT) Initialize(ctx context.Context, center model.Coordinates, zoom int) (MapHandle, error) {
	h := MapHandle(uuid.NewString())
	if err := p.publish(ctx, Command{Op: "init", Map: h, At: &center, Zoom: zoom}); err != nil {
		return "", err
	}
	p.mu.Lock()
	p.handle = h
	p.mu.Unlock()
	return h, nil
}

func (p *MQTT) OnClick(h MapHandle, fn func(model.Coordinates)) error {
	if err := p.check(h); err != nil {
		return err
	}
	topic := p.prefix + "/clicks"
	token := p.broker.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		var at model.Coordinates
		if err := json.Unmarshal(msg.Payload(), &at); err != nil {
			p.log.WithError(err).WithField("topic", msg.Topic()).Warn("ignoring malformed map click")
			return
		}
		fn(at)
	})
	if err := wait(context.Background(), token); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	return nil
}

func (p *MQTT) AddMarker(h MapHandle, at model.Coordinates) (MarkerHandle, error) {
	if err := p.check(h); err != nil {
		return "", err
	}
	mk := MarkerHandle(uuid.NewString())
	if err := p.publish(context.Background(), Command{Op: "add_marker", Map: h, Marker: mk, At: &at}); err != nil {
		return "", err
	}
	p.mu.Lock()
	p.markers[mk] = true
	p.mu.Unlock()
	return mk, nil
}

func (p *MQTT) BindPopup(mk MarkerHandle, content, style string) error {
	if !p.hasMarker(mk) {
		return fmt.Errorf("binding popup to %s: %w", mk, ErrUnknownMarker)
	}
	return p.publish(context.Background(), Command{Op: "bind_popup", Marker: mk, Content: content, Style: style})
}

func (p *MQTT) RemoveMarker(h MapHandle, mk MarkerHandle) error {
	if err := p.check(h); err != nil {
		return err
	}
	if !p.hasMarker(mk) {
		return fmt.Errorf("removing %s: %w", mk, ErrUnknownMarker)
	}
	if err := p.publish(context.Background(), Command{Op: "remove_marker", Map: h, Marker: mk}); err != nil {
		return err
	}
	p.mu.Lock()
	delete(p.markers, mk)
	p.mu.Unlock()
	return nil
}

func (p *MQTT) PanTo(h MapHandle, at model.Coordinates, zoom int) error {
	if err := p.check(h); err != nil {
		return err
	}
	return p.publish(context.Background(), Command{Op: "pan", Map: h, At: &at, Zoom: zoom})
}

func (p *MQTT) publish(ctx context.Context, cmd Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding %s command: %w", cmd.Op, err)
	}
	if err := wait(ctx, p.broker.Publish(p.prefix+"/map", 1, false, payload)); err != nil {
		return fmt.Errorf("publishing %s command: %w", cmd.Op, err)
	}
	return nil
}

func (p *MQTT) check(h MapHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == "" || h != p.handle {
		return fmt.Errorf("map %q: %w", h, ErrUnknownMap)
	}
	return nil
}

func (p *MQTT) hasMarker(mk MarkerHandle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.markers[mk]
}

func wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("timed out after %s", publishTimeout)
	}
}
