package queue

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaConfig configures the Kafka queue.
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	GroupID       string
	SASLUsername  string
	SASLPassword  string
	TLSEnabled    bool
	TLSCAFile     string
	TLSSkipVerify bool
	Retry         RetryConfig
}

// KafkaQueue publishes jobs keyed by account id, so every job of one account
// lands on the same partition and is consumed in order. Failed jobs go to
// "<topic>.dlq".
type KafkaQueue struct {
	cfg     KafkaConfig
	writer  *kafka.Writer
	dialer  *kafka.Dialer
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	reader *kafka.Reader
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ParseBrokers splits a comma separated broker list.
func ParseBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewKafka creates the queue and checks the first broker is reachable.
func NewKafka(cfg KafkaConfig, logger *slog.Logger, m *metrics.Metrics) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka queue: brokers are required")
	}
	if cfg.Topic == "" {
		cfg.Topic = "ledger.balance-jobs"
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "ledger-balance-workers"
	}
	if logger == nil {
		logger = slog.Default()
	}

	dialer, transport, err := newKafkaDialer(cfg)
	if err != nil {
		return nil, err
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
	}
	if transport != nil {
		writer.Transport = transport
	}

	q := &KafkaQueue{
		cfg:     cfg,
		writer:  writer,
		dialer:  dialer,
		logger:  logger.With("queue", "kafka", "topic", cfg.Topic),
		metrics: m,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("kafka queue: connection failed: %w", err)
	}
	_ = conn.Close()
	return q, nil
}

// Publish writes the job keyed by its account id.
func (q *KafkaQueue) Publish(ctx context.Context, job queue.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("kafka queue: marshal failed: %w", err)
	}
	msg := kafka.Message{Key: []byte(job.AccountID.String()), Value: data, Time: time.Now()}
	if err := q.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka queue: publish failed: %w", err)
	}
	return nil
}

// Start consumes the topic in the background until Stop.
func (q *KafkaQueue) Start(ctx context.Context, handler queue.HandlerFunc) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.reader != nil {
		return fmt.Errorf("kafka queue: already started")
	}
	q.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     q.cfg.Brokers,
		GroupID:     q.cfg.GroupID,
		Topic:       q.cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		Dialer:      q.dialer,
	})
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.wg.Add(1)
	go func(reader *kafka.Reader) {
		defer q.wg.Done()
		q.consumeLoop(ctx, reader, handler)
	}(q.reader)
	q.logger.Info("kafka queue consumer started", "group_id", q.cfg.GroupID, "brokers", q.cfg.Brokers)
	return nil
}

func (q *KafkaQueue) consumeLoop(ctx context.Context, reader *kafka.Reader, handler queue.HandlerFunc) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return
			}
			q.logger.Error("kafka consume error", "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if err := q.processMessage(ctx, msg, handler); err != nil {
			// Not committed; the message is redelivered.
			q.logger.Error("kafka message processing failed; will retry", "error", err, "partition", msg.Partition, "offset", msg.Offset)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			q.logger.Error("kafka commit error", "error", err, "partition", msg.Partition, "offset", msg.Offset)
		}
	}
}

func (q *KafkaQueue) processMessage(ctx context.Context, msg kafka.Message, handler queue.HandlerFunc) error {
	var job queue.Job
	if err := json.Unmarshal(msg.Value, &job); err != nil || !job.Kind.IsValid() {
		q.logger.Error("failed to decode job", "error", err, "offset", msg.Offset)
		return q.publishToDLQ(ctx, msg)
	}
	if err := process(ctx, q.cfg.Retry, handler, job); err != nil {
		if ctx.Err() != nil {
			return err
		}
		q.logger.Error("job failed", "error", err, "job_id", job.ID, "account_id", job.AccountID)
		return q.publishToDLQ(ctx, msg)
	}
	return nil
}

func (q *KafkaQueue) publishToDLQ(ctx context.Context, msg kafka.Message) error {
	dlq := kafka.Message{
		Topic: q.cfg.Topic + ".dlq",
		Key:   msg.Key,
		Value: msg.Value,
		Time:  time.Now(),
	}
	w := &kafka.Writer{
		Addr:                   q.writer.Addr,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Transport:              q.writer.Transport,
	}
	defer func() { _ = w.Close() }()
	if err := w.WriteMessages(ctx, dlq); err != nil {
		return fmt.Errorf("kafka queue: dlq publish failed: %w", err)
	}
	q.metrics.DeadLetter("kafka")
	q.logger.Warn("job sent to DLQ", "dlq_topic", dlq.Topic)
	return nil
}

// Stop ends consumption and waits for the consumer goroutine.
func (q *KafkaQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	cancel, reader := q.cancel, q.reader
	q.cancel, q.reader = nil, nil
	q.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return reader.Close()
}

// Close stops the consumer and closes the writer.
func (q *KafkaQueue) Close() error {
	if err := q.Stop(context.Background()); err != nil {
		return err
	}
	return q.writer.Close()
}

func newKafkaDialer(cfg KafkaConfig) (*kafka.Dialer, *kafka.Transport, error) {
	tlsConfig, err := buildKafkaTLSConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	mechanism, err := buildKafkaSASLMechanism(cfg)
	if err != nil {
		return nil, nil, err
	}
	dialer := &kafka.Dialer{
		Timeout:       5 * time.Second,
		TLS:           tlsConfig,
		SASLMechanism: mechanism,
	}
	if tlsConfig == nil && mechanism == nil {
		return dialer, nil, nil
	}
	return dialer, &kafka.Transport{TLS: tlsConfig, SASL: mechanism}, nil
}

func buildKafkaTLSConfig(cfg KafkaConfig) (*tls.Config, error) {
	if !cfg.TLSEnabled {
		return nil, nil
	}
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.TLSSkipVerify, //nolint:gosec
	}
	if caFile := strings.TrimSpace(cfg.TLSCAFile); caFile != "" {
		caBytes, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("kafka queue: read tls ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caBytes) {
			return nil, fmt.Errorf("kafka queue: invalid tls ca file")
		}
		tlsConfig.RootCAs = pool
	}
	return tlsConfig, nil
}

func buildKafkaSASLMechanism(cfg KafkaConfig) (sasl.Mechanism, error) {
	username := strings.TrimSpace(cfg.SASLUsername)
	password := strings.TrimSpace(cfg.SASLPassword)
	if username == "" && password == "" {
		return nil, nil
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("kafka queue: sasl username and password are required")
	}
	return plain.Mechanism{Username: username, Password: password}, nil
}

var _ queue.Queue = (*KafkaQueue)(nil)
