package channel

import "sync"

// Factory constructs an Application instance for a registered app id. An
// application registers itself under its well-known id (spec.md §6); an
// unregistered id fails channel open with ErrUnknownApp.
type Factory func(appName string) (Application, error)

// FactoryRegistry maps application ids to constructors. It is process-wide
// (shared across sessions), unlike Registry which is per-session.
type FactoryRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewFactoryRegistry returns an empty application-factory registry.
func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{factories: make(map[string]Factory)}
}

// Register associates appID with a constructor.
func (r *FactoryRegistry) Register(appID string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[appID] = factory
}

// New constructs an application instance for appID, or ErrUnknownApp if no
// factory is registered.
func (r *FactoryRegistry) New(appID, appName string) (Application, error) {
	r.mu.RLock()
	factory, ok := r.factories[appID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownApp
	}
	return factory(appName)
}

// channelIDStart is the session-local channel id counter's initial value
// (spec.md §6 wire constant).
const channelIDStart uint64 = 1

// Registry is a session's channel table: a monotonically-allocated id space
// guarded by its own lock (spec.md §5: "each session's channel registry is
// guarded by its own lock").
type Registry struct {
	mu       sync.Mutex
	channels map[uint64]*Channel
	nextID   uint64
}

// NewRegistry returns an empty per-session channel registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[uint64]*Channel), nextID: channelIDStart}
}

// Open allocates the next channel id, constructs an application via
// factory, and registers the resulting channel.
func (r *Registry) Open(factory *FactoryRegistry, appID, appName string, write WriteFunc, closeFn CloseFunc) (*Channel, error) {
	app, err := factory.New(appID, appName)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	ch := New(id, app, write, closeFn)
	r.channels[id] = ch
	return ch, nil
}

// Get returns the channel registered under id, if any.
func (r *Registry) Get(id uint64) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[id]
	return ch, ok
}

// Close removes the channel registered under id.
func (r *Registry) Close(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, id)
}

// CloseAll removes every channel and returns the removed channels. Session
// disposal discards the result; no application is notified.
func (r *Registry) CloseAll() []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		out = append(out, ch)
	}
	r.channels = make(map[uint64]*Channel)
	return out
}

// Count returns the number of open channels.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}
