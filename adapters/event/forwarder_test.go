package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/khoahotran/superleader/internal/domain/event"
	"github.com/khoahotran/superleader/pkg/eventbus"
	"github.com/khoahotran/superleader/pkg/logger"
)

type memSink struct {
	mu   sync.Mutex
	got  []event.Event
	fail bool
}

func (s *memSink) Publish(_ context.Context, evt event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broker unavailable")
	}
	s.got = append(s.got, evt)
	return nil
}

func TestForwarder_DeliversAndDrainsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := eventbus.New[event.Event]()
	sink := &memSink{}
	f := NewForwarder(bus, sink, logger.NewNopLogger())

	userID := uuid.New()
	for range 10 {
		bus.Publish(context.Background(), event.New(event.TypePersonUpdated, userID))
	}
	f.Close()
	f.Close()

	assert.Len(t, sink.got, 10)
	assert.Zero(t, bus.Len())

	bus.Publish(context.Background(), event.New(event.TypePersonUpdated, userID))
	assert.Len(t, sink.got, 10)
}

func TestForwarder_SinkErrorsDoNotStopTheLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := eventbus.New[event.Event]()
	f := NewForwarder(bus, &memSink{fail: true}, logger.NewNopLogger())

	bus.Publish(context.Background(), event.New(event.TypeTaskStateChanged, uuid.New()))
	bus.Publish(context.Background(), event.New(event.TypeTaskStateChanged, uuid.New()))
	f.Close()
}

type memWriter struct {
	msgs []kafka.Message
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error { return nil }

func TestKafkaProducer_RoundTrip(t *testing.T) {
	w := &memWriter{}
	p := &KafkaProducer{writer: w, log: logger.NewNopLogger()}

	userID, personID := uuid.New(), uuid.New()
	sent := event.New(event.TypeInteractionRecorded, userID).WithPerson(personID).With("interaction_id", "abc")
	require.NoError(t, p.Publish(context.Background(), sent))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, userID.String(), string(w.msgs[0].Key))

	got, err := DecodeMessage(w.msgs[0])
	require.NoError(t, err)
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, sent.Type, got.Type)
	assert.Equal(t, personID, got.PersonID)
	assert.Equal(t, "abc", got.Attributes["interaction_id"])
	assert.True(t, sent.OccurredAt.Equal(got.OccurredAt))
}

func TestDecodeMessage_Rejects(t *testing.T) {
	_, err := DecodeMessage(kafka.Message{Value: []byte("{not json")})
	assert.Error(t, err)

	_, err = DecodeMessage(kafka.Message{Value: []byte(`{"user_id":"` + uuid.NewString() + `"}`)})
	assert.Error(t, err)
}
