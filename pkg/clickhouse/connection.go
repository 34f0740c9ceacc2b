package clickhouse

import (
	"context"
	"fmt"
	"time"

	"adreport/pkg/config"
	"adreport/pkg/logger"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

// Querier is the read side of a ClickHouse connection
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
}

// ConnectionConfig holds the connection settings
type ConnectionConfig struct {
	DialTimeout          time.Duration
	MaxOpenConns         int
	MaxIdleConns         int
	ConnMaxLifetime      time.Duration
	BlockBufferSize      uint8
	MaxCompressionBuffer int
	MaxExecutionTime     int // seconds
}

// DefaultConnectionConfig returns the default settings
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		DialTimeout:          30 * time.Second,
		MaxOpenConns:         10,
		MaxIdleConns:         5,
		ConnMaxLifetime:      time.Hour,
		BlockBufferSize:      10,
		MaxCompressionBuffer: 10240,
		MaxExecutionTime:     60,
	}
}

// Client wraps one pooled ClickHouse connection
type Client struct {
	conn     driver.Conn
	config   *config.ClickHouseConfig
	resolver *TableNameResolver
}

// NewClient opens a connection and verifies it with a ping
func NewClient(ctx context.Context, cfg *config.ClickHouseConfig, connCfg *ConnectionConfig) (*Client, error) {
	if cfg == nil {
		return nil, WrapConnectionError(fmt.Errorf("clickhouse config is required"))
	}
	if connCfg == nil {
		connCfg = DefaultConnectionConfig()
	}

	conn, err := createConnection(cfg, connCfg)
	if err != nil {
		return nil, WrapConnectionError(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, WrapConnectionError(fmt.Errorf("ping failed: %w", err))
	}

	logger.Info("client initialized",
		zap.String("provider", "clickhouse"),
		zap.Strings("addresses", cfg.GetAddresses()),
		zap.String("database", cfg.Database),
		zap.String("cluster", cfg.Cluster))

	return &Client{conn: conn, config: cfg, resolver: NewTableNameResolver(cfg)}, nil
}

func createConnection(cfg *config.ClickHouseConfig, connCfg *ConnectionConfig) (driver.Conn, error) {
	opts := &clickhouse.Options{
		Addr: cfg.GetAddresses(),
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug:    cfg.Debug,
		Protocol: cfg.GetProtocol(),
		Settings: clickhouse.Settings{
			"max_execution_time": connCfg.MaxExecutionTime,
		},
		DialTimeout:          connCfg.DialTimeout,
		MaxOpenConns:         connCfg.MaxOpenConns,
		MaxIdleConns:         connCfg.MaxIdleConns,
		ConnMaxLifetime:      connCfg.ConnMaxLifetime,
		ConnOpenStrategy:     clickhouse.ConnOpenInOrder,
		BlockBufferSize:      connCfg.BlockBufferSize,
		MaxCompressionBuffer: connCfg.MaxCompressionBuffer,
	}

	// LZ4 only on the native protocol; HTTP does not support it
	if cfg.GetProtocol() == clickhouse.Native {
		opts.Compression = &clickhouse.Compression{Method: clickhouse.CompressionLZ4}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return conn, nil
}

// Query runs a read query
func (c *Client) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	if c.conn == nil {
		return nil, WrapConnectionError(fmt.Errorf("connection is nil"))
	}
	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, WrapError("query", "", err)
	}
	return rows, nil
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	if c.conn == nil {
		return WrapConnectionError(fmt.Errorf("connection is nil"))
	}
	if err := c.conn.Ping(ctx); err != nil {
		return WrapConnectionError(err)
	}
	return nil
}

// Close closes the connection
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Close(); err != nil {
		return WrapConnectionError(err)
	}
	return nil
}

// Resolver returns the table name resolver for this connection's cluster setup
func (c *Client) Resolver() *TableNameResolver {
	return c.resolver
}
