package types

// Conversation is the ordered sequence of messages an agent owns.
// Sessions are in-memory only: a Conversation is never serialized across
// process runs.
type Conversation struct {
	Messages []Message
}

func (c *Conversation) Append(m Message) {
	c.Messages = append(c.Messages, m)
}

func (c *Conversation) Len() int {
	return len(c.Messages)
}

// TotalTokens sums the stored per-message estimates.
func (c *Conversation) TotalTokens() int {
	total := 0
	for _, m := range c.Messages {
		total += m.TokenEstimate
	}
	return total
}
