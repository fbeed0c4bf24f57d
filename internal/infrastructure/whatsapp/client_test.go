package whatsapp

import (
	"testing"

	"github.com/go-waba-webhooks/internal/config"
	"github.com/go-waba-webhooks/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClient_ImplementsDomainClient(t *testing.T) {
	var c domain.Client = NewClient(&config.Config{PhoneNumberID: "1234"})
	assert.Equal(t, "1234", c.PhoneNumberID())
}
