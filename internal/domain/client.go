package domain

// Client is the receiving client an update is attached to. Updates only hold
// it so callbacks can issue follow-up calls; they never manage its lifetime.
type Client interface {
	PhoneNumberID() string
}
