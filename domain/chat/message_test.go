package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMessageID_SortsChronologically(t *testing.T) {
	req := require.New(t)

	earlier := NewMessageID(time.UnixMilli(1700000000000))
	later := NewMessageID(time.UnixMilli(1700000000001))

	req.Less(earlier, later)
	req.Len(strings.Split(earlier, "-"), 2)
	req.Len(earlier, 13+1+8)
}

func TestNewMessageID_Unique(t *testing.T) {
	req := require.New(t)
	at := time.Now()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewMessageID(at)
		_, dup := seen[id]
		req.False(dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
