package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/app/config"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
)

func NewConnection(cfg config.NATSConfig, log logger.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("shree-ecommerce"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warnf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Warnf("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", cfg.URL, err)
	}
	return conn, nil
}
