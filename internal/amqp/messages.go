package amqp

import (
	"encoding/json"
	"time"
)

// DatasetReplacedMessage signals that the canonical record set was rewritten
// in the local snapshot. It carries only metadata: the sync worker reloads
// the full table from the snapshot store before mirroring it to the sheet.
type DatasetReplacedMessage struct {
	Rows      int       `json:"rows"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDatasetReplacedMessage(rows int, source string) *DatasetReplacedMessage {
	return &DatasetReplacedMessage{
		Rows:      rows,
		Source:    source,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *DatasetReplacedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetReplacedMessageFromJSON decodes a message from JSON bytes.
func DatasetReplacedMessageFromJSON(data []byte) (*DatasetReplacedMessage, error) {
	var msg DatasetReplacedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
