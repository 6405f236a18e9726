package runtime

import (
	"context"
	"fmt"
	"sync"
)

// MockRuntime is a mock implementation of Runtime for testing
type MockRuntime struct {
	mu sync.RWMutex

	// Containers tracks the state of mock containers
	Containers map[string]*ContainerInfo

	// ExecResults maps container names to predefined exec results
	ExecResults map[string]*ExecResult

	// ExecFunc, when set, decides the result of each Exec call
	ExecFunc func(name string, command []string) (*ExecResult, error)

	// Errors allows injecting errors for specific operations
	Errors map[string]error

	// CallLog records all method calls for verification
	CallLog []MockCall
}

// MockCall represents a recorded method call
type MockCall struct {
	Method string
	Args   []interface{}
}

// NewMockRuntime creates a new mock runtime
func NewMockRuntime() *MockRuntime {
	return &MockRuntime{
		Containers:  make(map[string]*ContainerInfo),
		ExecResults: make(map[string]*ExecResult),
		Errors:      make(map[string]error),
		CallLog:     make([]MockCall, 0),
	}
}

func (m *MockRuntime) record(method string, args ...interface{}) {
	m.CallLog = append(m.CallLog, MockCall{Method: method, Args: args})
}

// SetError sets an error to be returned for a specific operation
func (m *MockRuntime) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[operation] = err
}

// SetExecResult sets the result for exec operations on a container
func (m *MockRuntime) SetExecResult(name string, result *ExecResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecResults[name] = result
}

// AddContainer adds a container to the mock, bound to the given devices
func (m *MockRuntime) AddContainer(name string, status ContainerStatus, devices ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Containers[name] = &ContainerInfo{
		Name:    name,
		Status:  status,
		Devices: devices,
	}
}

// GetCalls returns all recorded calls
func (m *MockRuntime) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]MockCall, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

// GetCallsFor returns all calls for a specific method
func (m *MockRuntime) GetCallsFor(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var calls []MockCall
	for _, call := range m.CallLog {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// Methods returns the method names of all recorded calls, in order
func (m *MockRuntime) Methods() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	methods := make([]string, len(m.CallLog))
	for i, call := range m.CallLog {
		methods[i] = call.Method
	}
	return methods
}

// Reset clears all state
func (m *MockRuntime) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Containers = make(map[string]*ContainerInfo)
	m.ExecResults = make(map[string]*ExecResult)
	m.ExecFunc = nil
	m.Errors = make(map[string]error)
	m.CallLog = make([]MockCall, 0)
}

// Name returns the runtime identifier
func (m *MockRuntime) Name() string {
	return "mock"
}

// Pull records an image pull
func (m *MockRuntime) Pull(ctx context.Context, image string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Pull", image)

	if err, ok := m.Errors["Pull"]; ok {
		return err
	}
	return nil
}

// Create creates a new container
func (m *MockRuntime) Create(ctx context.Context, opts CreateOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Create", opts)

	if err, ok := m.Errors["Create"]; ok {
		return err
	}

	if _, ok := m.Containers[opts.Name]; ok {
		return fmt.Errorf("container name %s is already in use", opts.Name)
	}

	info := &ContainerInfo{
		Name:   opts.Name,
		Status: StatusStopped,
		Image:  opts.Image,
	}
	if opts.Device != "" {
		info.Devices = []string{opts.Device}
	}
	m.Containers[opts.Name] = info

	return nil
}

// Start starts an existing container
func (m *MockRuntime) Start(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Start", name)

	if err, ok := m.Errors["Start"]; ok {
		return err
	}

	if container, ok := m.Containers[name]; ok {
		container.Status = StatusRunning
		return nil
	}

	return fmt.Errorf("no such container: %s", name)
}

// Stop stops a running container
func (m *MockRuntime) Stop(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Stop", name)

	if err, ok := m.Errors["Stop"]; ok {
		return err
	}

	if container, ok := m.Containers[name]; ok {
		container.Status = StatusStopped
		return nil
	}

	return fmt.Errorf("no such container: %s", name)
}

// Remove removes a container
func (m *MockRuntime) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Remove", name)

	if err, ok := m.Errors["Remove"]; ok {
		return err
	}

	if _, ok := m.Containers[name]; !ok {
		return fmt.Errorf("no such container: %s", name)
	}
	delete(m.Containers, name)
	return nil
}

// Inspect returns detailed status of a container
func (m *MockRuntime) Inspect(ctx context.Context, name string) (*ContainerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Inspect", name)

	if err, ok := m.Errors["Inspect"]; ok {
		return nil, err
	}

	if container, ok := m.Containers[name]; ok {
		info := *container
		info.Devices = append([]string(nil), container.Devices...)
		return &info, nil
	}

	return &ContainerInfo{Name: name, Status: StatusNotFound}, nil
}

// Exec executes a command inside a container
func (m *MockRuntime) Exec(ctx context.Context, name string, command []string, opts ExecOptions) (*ExecResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Exec", name, command, opts)

	if err, ok := m.Errors["Exec"]; ok {
		return nil, err
	}

	if m.ExecFunc != nil {
		return m.ExecFunc(name, command)
	}

	if result, ok := m.ExecResults[name]; ok {
		return result, nil
	}

	return &ExecResult{ExitCode: 0}, nil
}

// ExecReplace records a process-replacing exec. Returning nil stands for
// the replaced process having taken over.
func (m *MockRuntime) ExecReplace(ctx context.Context, name string, command []string, opts ExecOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ExecReplace", name, command, opts)

	if err, ok := m.Errors["ExecReplace"]; ok {
		return err
	}

	return nil
}

// Ensure MockRuntime implements Runtime
var _ Runtime = (*MockRuntime)(nil)
