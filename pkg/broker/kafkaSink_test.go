package broker

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaSink_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "notifications" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "push-1" {
			return errors.New("unexpected key " + string(key))
		}
		for _, header := range msg.Headers {
			if string(header.Key) == HeaderUniqueKey && string(header.Value) == "push-1" {
				return nil
			}
		}
		return errors.New("unique key header missing")
	})

	sink := newKafkaSink(producer, "notifications", logr.Discard())
	require.NoError(t, sink.Publish(context.Background(), testNotification()))
	require.NoError(t, sink.Close())
}

func TestKafkaSink_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	sink := newKafkaSink(producer, "notifications", logr.Discard())
	err := sink.Publish(context.Background(), testNotification())
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	require.NoError(t, sink.Close())
}

func TestKafkaSink_PublishNil(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)

	sink := newKafkaSink(producer, "notifications", logr.Discard())
	assert.Error(t, sink.Publish(context.Background(), nil))
	require.NoError(t, sink.Close())
}
