package main

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gr-butler/wxnode/data"
	"github.com/gr-butler/wxnode/wire"
	logger "github.com/sirupsen/logrus"
)

// mqttMirror republishes every computed snapshot to a broker topic, for
// dashboards on the local network. Off unless a broker is configured.
type mqttMirror struct {
	client mqtt.Client
	topic  string
}

func newMQTTMirror(broker, topic, clientID string) (*mqttMirror, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("timed out connecting to broker [%v]", broker)
	}
	if token.Error() != nil {
		return nil, token.Error()
	}
	logger.Infof("MQTT mirror connected to [%v], topic [%v]", broker, topic)
	return &mqttMirror{client: client, topic: topic}, nil
}

// publish is fire-and-forget; a dropped mirror publish costs nothing.
func (m *mqttMirror) publish(s data.Snapshot) {
	m.client.Publish(m.topic, 0, false, wire.Encode(s))
}
