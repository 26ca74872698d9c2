package uid

import "github.com/bwmarrin/snowflake"

// Snowflake generates time-ordered int64 IDs using Twitter's snowflake
// layout. IDs from different nodes never collide as long as each process
// gets a distinct node number.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake returns a snowflake generator for the given node number
// (0..1023).
func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}
	return &Snowflake{node: n}, nil
}

// Generate returns a new int64 ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
