// internal/carbon/client.go
package carbon

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"
)

// Client sends plaintext carbon samples over UDP. Connectionless and
// best-effort: no acknowledgement, no retry.
type Client struct {
	conn *net.UDPConn
	log  *zap.Logger
}

// Config is minimal transport config.
type Config struct {
	// Address is the carbon sink, host:port.
	Address string
}

// New resolves the sink address and binds a sending socket.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.Address == "" {
		return nil, errors.New("carbon: address required")
	}
	raddr, err := net.ResolveUDPAddr("udp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("carbon: resolve %s: %w", cfg.Address, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("carbon: dial %s: %w", cfg.Address, err)
	}
	return &Client{conn: conn, log: log}, nil
}

// Send emits one newline-terminated datagram per line. Lines are the
// plaintext protocol: "path value timestamp". Errors are collected so
// one lost datagram does not stop the burst.
func (c *Client) Send(lines []string) error {
	var errs []string
	for _, line := range lines {
		c.log.Debug("sending to carbon", zap.String("line", line))
		if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
			errs = append(errs, fmt.Sprintf("carbon: send %q: %v", line, err))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// Close releases the socket.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
