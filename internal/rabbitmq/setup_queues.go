package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// LifecycleExchange receives one message per request or response
// transition, routed by the action name.
const LifecycleExchange = "lifecycle"

// QueueConfig binds one queue to the lifecycle exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// DefaultQueues are the bindings the notification side consumes from.
var DefaultQueues = []QueueConfig{
	{QueueName: "lifecycle.request", RoutingKey: "request"},
	{QueueName: "lifecycle.response", RoutingKey: "response"},
}

// SetupChannel opens a channel, declares the lifecycle exchange and
// binds the given queues.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	if err := ch.ExchangeDeclare(
		LifecycleExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		if err := ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			LifecycleExchange,
			false,
			nil,
		); err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
