package models

// Conversation is assembled from a store read; it is never persisted itself.
type Conversation struct {
	ID    string
	Turns []Turn
}

func (c Conversation) Len() int {
	return len(c.Turns)
}

// WithoutLatest drops the most recent user turn carrying content, i.e. the
// turn the current request just appended. Other turns keep their order.
func (c Conversation) WithoutLatest(content string) []Turn {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		t := c.Turns[i]
		if t.Role == RoleUser && t.Content == content {
			prior := make([]Turn, 0, len(c.Turns)-1)
			prior = append(prior, c.Turns[:i]...)
			return append(prior, c.Turns[i+1:]...)
		}
	}
	return c.Turns
}
