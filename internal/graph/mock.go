package graph

import (
	"context"
	"sync"
	"time"

	"github.com/zero-day-ai/text2cypher/internal/schema"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// MockCall represents a recorded method call on the mock graph client.
type MockCall struct {
	Method    string
	Cypher    string
	Params    map[string]any
	Timestamp time.Time
}

// MockGraphClient is a scripted GraphClient for tests.
type MockGraphClient struct {
	mu sync.Mutex

	connected    bool
	healthStatus types.HealthStatus
	calls        []MockCall
	delay        time.Duration

	queryFunc    func(cypher string, params map[string]any) (QueryResult, error)
	writeFunc    func(cypher string, params map[string]any) (QueryResult, error)
	schema       schema.Raw
	schemaError  error
	connectError error
}

// NewMockGraphClient creates a mock that returns empty results.
func NewMockGraphClient() *MockGraphClient {
	return &MockGraphClient{
		healthStatus: types.Healthy("mock graph client"),
	}
}

// SetQueryResult makes every Query return res.
func (m *MockGraphClient) SetQueryResult(res QueryResult) *MockGraphClient {
	return m.SetQueryFunc(func(string, map[string]any) (QueryResult, error) { return res, nil })
}

// SetQueryError makes every Query fail with err.
func (m *MockGraphClient) SetQueryError(err error) *MockGraphClient {
	return m.SetQueryFunc(func(string, map[string]any) (QueryResult, error) { return QueryResult{}, err })
}

// SetQueryFunc installs a handler deciding each Query outcome.
func (m *MockGraphClient) SetQueryFunc(fn func(cypher string, params map[string]any) (QueryResult, error)) *MockGraphClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryFunc = fn
	return m
}

// SetWriteFunc installs a handler deciding each Write outcome.
func (m *MockGraphClient) SetWriteFunc(fn func(cypher string, params map[string]any) (QueryResult, error)) *MockGraphClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeFunc = fn
	return m
}

// SetSchema sets the schema returned by Schema.
func (m *MockGraphClient) SetSchema(raw schema.Raw) *MockGraphClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schema = raw
	return m
}

// SetSchemaError makes Schema fail with err.
func (m *MockGraphClient) SetSchemaError(err error) *MockGraphClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemaError = err
	return m
}

// SetConnectError makes Connect fail with err.
func (m *MockGraphClient) SetConnectError(err error) *MockGraphClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
	return m
}

// SetHealthStatus overrides the status reported once connected.
func (m *MockGraphClient) SetHealthStatus(status types.HealthStatus) *MockGraphClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
	return m
}

// SetDelay makes Query wait d, or until ctx is done.
func (m *MockGraphClient) SetDelay(d time.Duration) *MockGraphClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

func (m *MockGraphClient) record(method, cypher string, params map[string]any) {
	m.calls = append(m.calls, MockCall{Method: method, Cypher: cypher, Params: params, Timestamp: time.Now()})
}

// Connect records the call and simulates connection.
func (m *MockGraphClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Connect", "", nil)
	if m.connectError != nil {
		return m.connectError
	}
	m.connected = true
	return nil
}

// Close records the call and simulates disconnection.
func (m *MockGraphClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Close", "", nil)
	m.connected = false
	return nil
}

// Health returns the configured status, or unhealthy before Connect.
func (m *MockGraphClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Health", "", nil)
	if !m.connected {
		return types.Unhealthy("not connected")
	}
	return m.healthStatus
}

// Query records the call and applies the scripted handler and row limit.
func (m *MockGraphClient) Query(ctx context.Context, cypher string, params map[string]any, opts ...QueryOption) (QueryResult, error) {
	m.mu.Lock()
	m.record("Query", cypher, params)
	fn, delay := m.queryFunc, m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return QueryResult{}, types.WrapError(ErrCodeGraphQueryFailed, "query execution failed", ctx.Err())
		case <-time.After(delay):
		}
	}

	if fn == nil {
		return QueryResult{Records: []map[string]any{}}, nil
	}

	res, err := fn(cypher, params)
	if err != nil {
		return QueryResult{}, err
	}

	if o := applyQueryOptions(opts); o.rowLimit > 0 && len(res.Records) > o.rowLimit {
		res.Records = res.Records[:o.rowLimit]
		res.Truncated = true
	}
	return res, nil
}

// Write records the call and applies the scripted handler.
func (m *MockGraphClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	m.record("Write", cypher, params)
	fn := m.writeFunc
	m.mu.Unlock()

	if fn == nil {
		return QueryResult{}, nil
	}
	return fn(cypher, params)
}

// Schema returns the configured schema.
func (m *MockGraphClient) Schema(ctx context.Context) (schema.Raw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Schema", "", nil)
	if m.schemaError != nil {
		return schema.Raw{}, m.schemaError
	}
	return m.schema, nil
}

// GetCalls returns all recorded calls.
func (m *MockGraphClient) GetCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallsTo returns recorded calls of one method.
func (m *MockGraphClient) CallsTo(method string) []MockCall {
	var out []MockCall
	for _, c := range m.GetCalls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

var _ GraphClient = (*MockGraphClient)(nil)
var _ GraphClient = (*Neo4jClient)(nil)
