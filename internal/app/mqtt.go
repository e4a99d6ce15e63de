package app

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/tiltframe/internal/config"
)

// Publisher publishes JSON payloads.
type Publisher interface {
	Publish(topic string, v any) error
}

type mqttPublisher struct {
	client mqtt.Client
}

func (p mqttPublisher) Publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "json marshal (%s)", topic)
	}
	if token := p.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "MQTT publish (%s)", topic)
	}
	return nil
}

// clientID makes a broker-unique client ID, so several copies of the same
// binary can run against one broker.
func clientID(prefix, role string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, role, uuid.NewString()[:8])
}

func connectMQTT(cfg config.MQTTConfig, role string) (mqtt.Client, error) {
	id := clientID(cfg.ClientIDPrefix, role)
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(id).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "MQTT connect (%s)", cfg.Broker)
	}

	log.WithFields(log.Fields{"broker": cfg.Broker, "client_id": id}).Info("connected to MQTT broker")
	return client, nil
}

// subscribeJSON decodes every message on topic into a T and hands it to fn.
// Undecodable payloads are logged and dropped.
func subscribeJSON[T any](client mqtt.Client, topic string, fn func(T)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.WithError(err).WithField("topic", topic).Warn("MQTT payload unmarshal error")
			return
		}
		fn(v)
	})
	token.Wait()
	if token.Error() != nil {
		return errors.Wrapf(token.Error(), "MQTT subscribe (%s)", topic)
	}

	log.WithField("topic", topic).Info("subscribed")
	return nil
}
