package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject  string
	data     []byte
	flushErr error
	closed   bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subject = subj
	f.data = data
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

func TestNATSNotifier_NotifyPublished(t *testing.T) {
	fc := &fakeConn{}
	n := &NATSNotifier{conn: fc, subject: "jarbuilder.published"}

	err := n.NotifyPublished(context.Background(), &PublishedEvent{
		BuildID:    "b1",
		Coordinate: "ovh.neziw:ReleaseChecker:1.0.2",
		Repository: "https://repo.neziw.ovh/releases/",
		Artifacts:  []string{"ReleaseChecker-1.0.2.jar"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jarbuilder.published", fc.subject)

	var decoded PublishedEvent
	require.NoError(t, json.Unmarshal(fc.data, &decoded))
	assert.Equal(t, "ovh.neziw:ReleaseChecker:1.0.2", decoded.Coordinate)
	assert.False(t, decoded.Timestamp.IsZero())

	require.NoError(t, n.Close())
	assert.True(t, fc.closed)
}

func TestNATSNotifier_FlushError(t *testing.T) {
	n := &NATSNotifier{conn: &fakeConn{flushErr: errors.New("timeout")}, subject: "s"}
	err := n.NotifyPublished(context.Background(), &PublishedEvent{})
	assert.ErrorContains(t, err, "flush")
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NoopNotifier{}
	assert.NoError(t, n.NotifyPublished(context.Background(), &PublishedEvent{}))
	assert.NoError(t, n.Close())
}
