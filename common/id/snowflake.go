package id

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init configures the node that stamps audit entry and change ids.
// Every running process needs its own node id.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns a time-ordered id, unique across nodes.
func New() int64 {
	return node.Generate().Int64()
}

// Time returns the millisecond timestamp embedded in a snowflake id.
func Time(id int64) time.Time {
	return time.UnixMilli(snowflake.ID(id).Time()).UTC()
}
