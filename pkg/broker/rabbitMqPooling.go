package broker

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/streadway/amqp"
)

type pooledChannel struct {
	channel     *amqp.Channel
	notifyClose chan *amqp.Error
}

func newPooledChannel(conn *amqp.Connection) (*pooledChannel, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	return &pooledChannel{
		channel:     channel,
		notifyClose: channel.NotifyClose(make(chan *amqp.Error, 1)),
	}, nil
}

func newConnection(url string, logger logr.Logger) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	// Set up a channel to handle connection close notifications
	notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		for err := range notifyClose {
			logger.Info("RabbitMQ connection closed", "reason", err.Error())
		}
	}()

	return conn, nil
}

func (r *rabbitMqSink) connectAndInitialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drainPool()
	if r.connection != nil && !r.connection.IsClosed() {
		r.connection.Close()
	}

	connection, err := newConnection(r.settings.URL, r.logger)
	if err != nil {
		return err
	}
	r.connection = connection

	for i := 0; i < r.settings.PoolSize; i++ {
		pooledChan, err := newPooledChannel(connection)
		if err != nil {
			return err
		}
		r.channelPool <- pooledChan
	}

	r.logger.Info("RabbitMQ connection and channel pool initialized", "poolSize", r.settings.PoolSize)
	return nil
}

// drainPool closes every idle channel. Callers hold r.mu.
func (r *rabbitMqSink) drainPool() {
	for {
		select {
		case pooledChan := <-r.channelPool:
			pooledChan.channel.Close()
		default:
			return
		}
	}
}

func (r *rabbitMqSink) isConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connection != nil && !r.connection.IsClosed()
}

func (r *rabbitMqSink) recoverConnection() {
	for {
		select {
		case <-r.reconnectTicker.C:
			if !r.isConnected() {
				r.logger.Info("Attempting to reconnect to RabbitMQ")
				if err := r.connectAndInitialize(); err != nil {
					r.logger.Error(err, "Failed to reconnect to RabbitMQ")
				} else {
					r.logger.Info("Reconnected to RabbitMQ")
				}
			}
		case <-r.stopReconnect:
			r.logger.V(1).Info("Stopping RabbitMQ connection recovery")
			return
		}
	}
}

func (r *rabbitMqSink) getChannel() (*pooledChannel, error) {
	for {
		select {
		case pooledChan := <-r.channelPool:
			select {
			case err := <-pooledChan.notifyClose:
				r.logger.V(1).Info("Discarding closed channel", "reason", fmt.Sprint(err))
				continue
			default:
				return pooledChan, nil
			}
		default:
			r.mu.Lock()
			conn := r.connection
			r.mu.Unlock()
			if conn == nil || conn.IsClosed() {
				return nil, fmt.Errorf("RabbitMQ connection is not available")
			}
			r.logger.V(1).Info("Creating new channel")
			return newPooledChannel(conn)
		}
	}
}

func (r *rabbitMqSink) releaseChannel(pooledChan *pooledChannel) {
	select {
	case err := <-pooledChan.notifyClose:
		r.logger.V(1).Info("Discarding closed channel", "reason", fmt.Sprint(err))
		return
	default:
		select {
		case r.channelPool <- pooledChan:
		default:
			// Pool is full, close the channel
			pooledChan.channel.Close()
		}
	}
}
