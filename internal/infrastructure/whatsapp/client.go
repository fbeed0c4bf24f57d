package whatsapp

import "github.com/go-waba-webhooks/internal/config"

// Client identifies the business phone number webhook deliveries are
// received for. It is attached to every parsed update so callbacks know
// which number to act on; it is immutable and safe to share.
type Client struct {
	phoneNumberID string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{phoneNumberID: cfg.PhoneNumberID}
}

func (c *Client) PhoneNumberID() string { return c.phoneNumberID }
