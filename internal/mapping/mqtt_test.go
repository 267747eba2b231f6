package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/lildude/mapty/internal/model"
	"github.com/sirupsen/logrus"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type message struct {
	topic   string
	payload []byte
}

func (m message) Duplicate() bool   { return false }
func (m message) Qos() byte         { return 1 }
func (m message) Retained() bool    { return false }
func (m message) Topic() string     { return m.topic }
func (m message) MessageID() uint16 { return 1 }
func (m message) Payload() []byte   { return m.payload }
func (m message) Ack()              {}

type fakeBroker struct {
	published []message
	handlers  map[string]mqtt.MessageHandler
	err       error
}

func (b *fakeBroker) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	if b.err == nil {
		b.published = append(b.published, message{topic: topic, payload: payload.([]byte)})
	}
	return doneToken{err: b.err}
}

func (b *fakeBroker) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	if b.handlers == nil {
		b.handlers = map[string]mqtt.MessageHandler{}
	}
	b.handlers[topic] = cb
	return doneToken{}
}

func (b *fakeBroker) commands(t *testing.T) []Command {
	t.Helper()
	var out []Command
	for _, m := range b.published {
		if m.topic != "mapty/map" {
			t.Errorf("unexpected topic %s", m.topic)
		}
		var c Command
		if err := json.Unmarshal(m.payload, &c); err != nil {
			t.Fatal(err)
		}
		out = append(out, c)
	}
	return out
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestMQTTPublishesCommands(t *testing.T) {
	b := &fakeBroker{}
	p := NewMQTT(b, "mapty", quiet())
	at := model.Coordinates{Lat: 40.75, Lng: -74.03}

	h, err := p.Initialize(context.Background(), at, 13)
	if err != nil {
		t.Fatal(err)
	}
	mk, err := p.AddMarker(h, at)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.BindPopup(mk, "🚴‍♀️ Cycling on July 4", "cycling-popup"); err != nil {
		t.Fatal(err)
	}
	if err := p.PanTo(h, at, 13); err != nil {
		t.Fatal(err)
	}
	if err := p.RemoveMarker(h, mk); err != nil {
		t.Fatal(err)
	}

	cmds := b.commands(t)
	ops := []string{"init", "add_marker", "bind_popup", "pan", "remove_marker"}
	if len(cmds) != len(ops) {
		t.Fatalf("expected %d commands, got %d", len(ops), len(cmds))
	}
	for i, op := range ops {
		if cmds[i].Op != op {
			t.Errorf("command %d: expected %s, got %s", i, op, cmds[i].Op)
		}
	}
	if cmds[1].Marker != mk || cmds[1].At == nil || *cmds[1].At != at {
		t.Errorf("unexpected add_marker command %+v", cmds[1])
	}
	if cmds[2].Style != "cycling-popup" {
		t.Errorf("unexpected popup style %q", cmds[2].Style)
	}

	if err := p.RemoveMarker(h, mk); !errors.Is(err, ErrUnknownMarker) {
		t.Errorf("expected ErrUnknownMarker, got %v", err)
	}
}

func TestMQTTRejectsUnknownMap(t *testing.T) {
	p := NewMQTT(&fakeBroker{}, "mapty", quiet())
	if _, err := p.AddMarker("nope", model.Coordinates{}); !errors.Is(err, ErrUnknownMap) {
		t.Errorf("expected ErrUnknownMap, got %v", err)
	}
}

func TestMQTTPublishFailure(t *testing.T) {
	b := &fakeBroker{err: errors.New("not connected")}
	p := NewMQTT(b, "mapty", quiet())
	if _, err := p.Initialize(context.Background(), model.Coordinates{}, 13); err == nil {
		t.Error("expected error when publish fails")
	}
}

func TestMQTTClicks(t *testing.T) {
	b := &fakeBroker{}
	p := NewMQTT(b, "mapty", quiet())
	h, _ := p.Initialize(context.Background(), model.Coordinates{}, 13)

	var got []model.Coordinates
	if err := p.OnClick(h, func(at model.Coordinates) { got = append(got, at) }); err != nil {
		t.Fatal(err)
	}
	cb := b.handlers["mapty/clicks"]
	if cb == nil {
		t.Fatal("expected subscription to mapty/clicks")
	}
	cb(nil, message{topic: "mapty/clicks", payload: []byte(`{"lat":1.5,"lng":2.5}`)})
	cb(nil, message{topic: "mapty/clicks", payload: []byte(`not json`)})

	if len(got) != 1 || got[0] != (model.Coordinates{Lat: 1.5, Lng: 2.5}) {
		t.Errorf("unexpected clicks %v", got)
	}
}

func TestClientOptions(t *testing.T) {
	opts := clientOptions("tcp://localhost:1883", "mapty-test")
	if opts.Order {
		t.Error("expected click handlers not to be ordered on the message loop")
	}
	if len(opts.Servers) != 1 || opts.Servers[0].Host != "localhost:1883" {
		t.Errorf("unexpected servers %v", opts.Servers)
	}
	if opts.ClientID != "mapty-test" || !opts.AutoReconnect || !opts.ConnectRetry {
		t.Errorf("unexpected options %+v", opts)
	}
}
