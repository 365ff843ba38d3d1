package model

// Claims holds identity attributes asserted by the upstream authorizer.
// A nil *Claims means the invocation carried no identity.
type Claims struct {
	Email    string
	Username string
}

// Identity returns the email when set and the username otherwise.
func (c *Claims) Identity() string {
	if c == nil {
		return ""
	}
	if c.Email != "" {
		return c.Email
	}
	return c.Username
}
