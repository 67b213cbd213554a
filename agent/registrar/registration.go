package registrar

import "sync"

// Info identifies the handler this process routes calls to.
type Info struct {
	HandlerID string `json:"handler_id"`
	AddressID string `json:"address_id"`
	Address   string `json:"address"`
	Name      string `json:"name"`
}

// Reader is the read side of Registration handed to dependent endpoints.
type Reader interface {
	Snapshot() Info
	Configured() bool
}

// Registration is the process-wide provisioning result. It starts empty and
// is written once by the registrar.
type Registration struct {
	mu   sync.RWMutex
	info Info
}

func NewRegistration() *Registration {
	return &Registration{}
}

func (r *Registration) Snapshot() Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// Configured reports whether a handler address has been adopted.
func (r *Registration) Configured() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info.AddressID != ""
}

func (r *Registration) set(info Info) {
	r.mu.Lock()
	r.info = info
	r.mu.Unlock()
}
