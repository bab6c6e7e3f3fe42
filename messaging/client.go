package messaging

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/config"
)

// MessageHandler receives raw payloads for a subscribed topic.
type MessageHandler func(topic string, payload []byte)

// Transport is the publish/subscribe surface the feed runs over.
type Transport interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, handler MessageHandler) error
}

// Client is the unified messaging client (MQTT or Kafka).
type Client struct {
	mu       sync.RWMutex
	cfg      *config.MessagingConfig
	backend  string
	handlers map[string]MessageHandler

	mqttConn mqtt.Client
	kafkaW   *kafkago.Writer
	kafkaR   map[string]*kafkago.Reader
}

var _ Transport = (*Client)(nil)

// NewClient creates a messaging client based on config.
func NewClient(cfg *config.MessagingConfig) *Client {
	return &Client{
		cfg:      cfg,
		backend:  cfg.Backend,
		handlers: make(map[string]MessageHandler),
		kafkaR:   make(map[string]*kafkago.Reader),
	}
}

// Connect establishes the messaging connection.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.backend {
	case "mqtt":
		return c.connectMQTT()
	case "kafka":
		return c.connectKafka()
	default:
		return fmt.Errorf("unknown messaging backend: %s", c.backend)
	}
}

func (c *Client) connectMQTT() error {
	broker := fmt.Sprintf("tcp://%s:%d", c.cfg.MQTT.Broker, c.cfg.MQTT.Port)
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(c.resubscribeMQTT)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(30 * time.Second) {
		return fmt.Errorf("mqtt connect %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	c.mqttConn = client
	logrus.Infof("messaging: mqtt connected to %s", broker)
	return nil
}

// resubscribeMQTT restores subscriptions after paho reconnects.
func (c *Client) resubscribeMQTT(client mqtt.Client) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for topic, handler := range c.handlers {
		h := handler
		client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
			h(msg.Topic(), msg.Payload())
		})
	}
}

func (c *Client) connectKafka() error {
	if len(c.cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	// Verify at least one broker is reachable
	var conn *kafkago.Conn
	var connErr error
	for _, broker := range c.cfg.Kafka.Brokers {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		conn, connErr = kafkago.DialContext(ctx, "tcp", broker)
		cancel()
		if connErr == nil {
			logrus.Infof("messaging: kafka connected to %s", broker)
			break
		}
	}
	if connErr != nil {
		return fmt.Errorf("kafka connect: %w", connErr)
	}

	// Ensure feed topics exist before setting up readers/writer
	ensureTopics(conn, TopicsFor(c.cfg.TopicPrefix).All()...)
	conn.Close()

	c.kafkaW = &kafkago.Writer{
		Addr:         kafkago.TCP(c.cfg.Kafka.Brokers...),
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return nil
}

// ensureTopics creates Kafka topics if they don't already exist.
// Errors are logged but not fatal since the broker may have
// auto.create.topics.enable=true anyway.
func ensureTopics(conn *kafkago.Conn, topics ...string) {
	if len(topics) == 0 {
		return
	}

	controller, err := conn.Controller()
	if err != nil {
		logrus.Warnf("messaging: cannot find controller for topic creation: %v", err)
		return
	}

	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	controllerConn, err := kafkago.Dial("tcp", controllerAddr)
	if err != nil {
		logrus.Warnf("messaging: cannot connect to controller: %v", err)
		return
	}
	defer controllerConn.Close()

	configs := make([]kafkago.TopicConfig, len(topics))
	for i, t := range topics {
		configs[i] = kafkago.TopicConfig{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}

	if err := controllerConn.CreateTopics(configs...); err != nil {
		logrus.Warnf("messaging: topic auto-create: %v", err)
	} else {
		logrus.Infof("messaging: ensured topics exist: %v", topics)
	}
}

// Publish sends a message to topic.
func (c *Client) Publish(topic string, payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.backend {
	case "mqtt":
		if c.mqttConn == nil || !c.mqttConn.IsConnected() {
			return fmt.Errorf("mqtt not connected")
		}
		token := c.mqttConn.Publish(topic, 1, false, payload)
		token.Wait()
		return token.Error()
	case "kafka":
		if c.kafkaW == nil {
			return fmt.Errorf("kafka writer not initialized")
		}
		return c.kafkaW.WriteMessages(context.Background(), kafkago.Message{
			Topic: topic,
			Value: payload,
		})
	default:
		return fmt.Errorf("unknown backend: %s", c.backend)
	}
}

// PublishEnvelope encodes a protocol envelope and publishes it to topic over t.
func PublishEnvelope(t Transport, topic string, env interface{ Encode() ([]byte, error) }) error {
	data, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return t.Publish(topic, data)
}

// Subscribe registers a handler for messages on topic.
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers[topic] = handler

	switch c.backend {
	case "mqtt":
		if c.mqttConn == nil {
			return fmt.Errorf("mqtt not connected")
		}
		token := c.mqttConn.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
			handler(msg.Topic(), msg.Payload())
		})
		token.Wait()
		return token.Error()
	case "kafka":
		if c.kafkaW == nil {
			return fmt.Errorf("kafka not connected")
		}
		reader := kafkago.NewReader(kafkago.ReaderConfig{
			Brokers: c.cfg.Kafka.Brokers,
			Topic:   topic,
			GroupID: c.cfg.Kafka.GroupID,
		})
		c.kafkaR[topic] = reader
		go func() {
			for {
				msg, err := reader.ReadMessage(context.Background())
				if err != nil {
					logrus.Debugf("messaging: kafka reader %s stopped: %v", topic, err)
					return
				}
				handler(msg.Topic, msg.Value)
			}
		}()
		return nil
	default:
		return fmt.Errorf("unknown backend: %s", c.backend)
	}
}

// IsConnected returns whether the messaging client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.backend {
	case "mqtt":
		return c.mqttConn != nil && c.mqttConn.IsConnected()
	case "kafka":
		return c.kafkaW != nil
	default:
		return false
	}
}

// Close shuts down the messaging connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mqttConn != nil {
		c.mqttConn.Disconnect(1000)
		c.mqttConn = nil
	}
	for topic, r := range c.kafkaR {
		r.Close()
		delete(c.kafkaR, topic)
	}
	if c.kafkaW != nil {
		c.kafkaW.Close()
		c.kafkaW = nil
	}
}
