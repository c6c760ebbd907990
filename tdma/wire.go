package tdma

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const syncPrefix = "Window: "

// FormatSync renders the sync broadcast for a window starting at start.
// The wire format carries whole seconds since the epoch.
func FormatSync(start time.Time) string {
	return syncPrefix + strconv.FormatInt(start.Unix(), 10)
}

// ParseSync extracts the window start time from a message. The second
// return value is false when the message is not a sync broadcast; such
// messages are not errors, the medium carries other traffic too.
func ParseSync(msg string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(msg, syncPrefix)
	if !ok {
		return time.Time{}, false
	}

	secs, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	return time.Unix(secs, 0), true
}

// A SlotMessage is the payload a node transmits in its slot: its identity
// and its own monotonically increasing sequence counter.
type SlotMessage struct {
	Identity int
	Sequence int
}

// String renders the slot message wire format.
func (m SlotMessage) String() string {
	return fmt.Sprintf("[Client %d][%d]", m.Identity, m.Sequence)
}

// ParseSlot decodes a slot message. The second return value is false when
// the message does not carry the slot wire format.
func ParseSlot(msg string) (SlotMessage, bool) {
	var m SlotMessage

	n, err := fmt.Sscanf(msg, "[Client %d][%d]", &m.Identity, &m.Sequence)
	if err != nil || n != 2 {
		return SlotMessage{}, false
	}

	return m, true
}
