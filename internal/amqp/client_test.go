package amqp

import (
	"testing"
	"time"
)

func TestDatasetReplacedMessageRoundTrip(t *testing.T) {
	msg := NewDatasetReplacedMessage(42, "add")
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := DatasetReplacedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Rows != 42 || got.Source != "add" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Second).Equal(msg.Timestamp.Truncate(time.Second)) {
		t.Fatalf("timestamp drift: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestDatasetReplacedMessageFromJSONInvalid(t *testing.T) {
	if _, err := DatasetReplacedMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
