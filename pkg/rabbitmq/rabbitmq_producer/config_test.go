package rabbitmq_producer

import (
	"listing-web/pkg/rabbitmq/rabbitmq_common"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublisherConfigValidate(t *testing.T) {
	base := rabbitmq_common.Config{URL: "amqp://localhost:5672/"}

	assert.NoError(t, PublisherConfig{Config: base}.validate(), "default exchange")
	assert.NoError(t, PublisherConfig{Config: base, ExchangeName: "listing_exchange", ExchangeType: "topic", DeclareExchangeIfMissing: true}.validate())
	assert.Error(t, PublisherConfig{Config: base, ExchangeName: "listing_exchange", DeclareExchangeIfMissing: true}.validate())
	assert.Error(t, PublisherConfig{}.validate())
}
