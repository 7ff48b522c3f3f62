package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/zero-day-ai/text2cypher/internal/pipeline"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// DefaultSubjectPrefix is the subject root for published events.
const DefaultSubjectPrefix = "text2cypher.events"

// Publisher is the part of *nats.Conn that NATSSink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
}

// NATSConfig configures a NATS connection for event publishing.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	ClientName    string
	Token         string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// NATSSink publishes each event to <prefix>.<run id>.
type NATSSink struct {
	pub    Publisher
	conn   *nats.Conn
	prefix string
}

// NewNATSSink wraps an existing publisher. The publisher is not closed by
// the sink.
func NewNATSSink(pub Publisher, prefix string) *NATSSink {
	if prefix = strings.Trim(prefix, "."); prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSSink{pub: pub, prefix: prefix}
}

// DialNATS connects to cfg.URL and returns a sink owning the connection.
func DialNATS(cfg NATSConfig) (*NATSSink, error) {
	if cfg.URL == "" {
		return nil, types.NewError(ErrCodeSinkConfig, "nats url cannot be empty")
	}

	var opts []nats.Option
	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}
	if cfg.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(cfg.ReconnectWait))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, nats.Timeout(cfg.Timeout))
	}
	if cfg.ClientName != "" {
		opts = append(opts, nats.Name(cfg.ClientName))
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, types.WrapError(ErrCodeSinkFailed, fmt.Sprintf("failed to connect to nats at %s", cfg.URL), err)
	}
	sink := NewNATSSink(conn, cfg.SubjectPrefix)
	sink.conn = conn
	return sink, nil
}

// Subject returns the subject events of runID are published on.
func (s *NATSSink) Subject(runID string) string {
	if runID == "" {
		runID = "_"
	}
	return s.prefix + "." + runID
}

func (s *NATSSink) Publish(ctx context.Context, ev pipeline.ProgressEvent) error {
	data, err := ev.JSON()
	if err != nil {
		return types.WrapError(ErrCodeSinkEncode, "failed to encode event", err)
	}
	if err := s.pub.Publish(s.Subject(ev.RunID), data); err != nil {
		return types.WrapError(ErrCodeSinkFailed, "failed to publish event", err)
	}
	return nil
}

// Close flushes pending messages and closes an owned connection.
func (s *NATSSink) Close() error {
	err := s.pub.FlushTimeout(5 * time.Second)
	if s.conn != nil {
		s.conn.Close()
	}
	if err != nil {
		return types.WrapError(ErrCodeSinkFailed, "failed to flush events", err)
	}
	return nil
}

var _ Sink = (*NATSSink)(nil)
