package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"lostwatch/internal/models"

	"github.com/google/uuid"
)

type Op string

const (
	// OpMatch tells the recipient that their counterpart has been found.
	OpMatch Op = "match"
)

// Notice is the envelope for a match notification. It travels from the API
// server to whatever delivers it (the log, an AMQP exchange, the hub).
type Notice struct {
	ID            string    `json:"id"`
	Op            Op        `json:"op"`
	Recipient     string    `json:"recipient"`
	SerialNumber  string    `json:"serial_number"`
	Model         string    `json:"model,omitempty"`
	FinderContact string    `json:"finder_contact"`
	LoserContact  string    `json:"loser_contact"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewMatchNotice builds a notice addressed to recipient.
func NewMatchNotice(recipient, serial, model, finder, loser string) Notice {
	return Notice{
		ID:            uuid.New().String(),
		Op:            OpMatch,
		Recipient:     recipient,
		SerialNumber:  serial,
		Model:         model,
		FinderContact: finder,
		LoserContact:  loser,
		CreatedAt:     models.TimeNow(),
	}
}

// Counterpart is the contact the recipient should get in touch with.
func (n Notice) Counterpart() string {
	if n.Recipient == n.FinderContact {
		return n.LoserContact
	}
	return n.FinderContact
}

// Subject and Body are the human-readable rendering used by every
// delivery channel.
func (n Notice) Subject() string {
	return "We found a match for your watch"
}

func (n Notice) Body() string {
	what := "your watch"
	if n.Model != "" {
		what = "your " + n.Model
	}
	if n.Recipient == n.FinderContact {
		return fmt.Sprintf("The owner of the watch you found (serial %s) has reported it lost. Please contact them at %s.",
			n.SerialNumber, n.Counterpart())
	}
	return fmt.Sprintf("Someone has found %s (serial %s). Please contact them at %s.",
		what, n.SerialNumber, n.Counterpart())
}

func (n *Notice) Encode() ([]byte, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Decode parses and checks a notice; a notice without an op or recipient
// cannot be delivered.
func Decode(b []byte) (*Notice, error) {
	var n Notice
	if err := json.Unmarshal(b, &n); err != nil {
		return nil, fmt.Errorf("decode notice: %w", err)
	}
	if n.Op != OpMatch {
		return nil, fmt.Errorf("unsupported notice op %q", n.Op)
	}
	if n.Recipient == "" {
		return nil, fmt.Errorf("notice %s has no recipient", n.ID)
	}
	return &n, nil
}
