package persist

import "sync"

// Handle guarda a fachada ativa e permite trocar a conexão remota em execução.
type Handle struct {
	mu          sync.RWMutex
	facade      *Facade
	closeRemote func()
}

// NewHandle envolve a fachada inicial. closeRemote pode ser nil.
func NewHandle(f *Facade, closeRemote func()) *Handle {
	return &Handle{facade: f, closeRemote: closeRemote}
}

// Facade devolve a fachada atual.
func (h *Handle) Facade() *Facade {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facade
}

// Swap troca a conexão remota e fecha a anterior. remote nil volta ao modo local.
func (h *Handle) Swap(remote Remote, closeRemote func()) *Facade {
	h.mu.Lock()
	defer h.mu.Unlock()

	previous := h.closeRemote
	h.facade = h.facade.WithRemote(remote)
	h.closeRemote = closeRemote
	if previous != nil {
		previous()
	}
	return h.facade
}

// Close fecha a conexão remota ativa.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closeRemote != nil {
		h.closeRemote()
		h.closeRemote = nil
	}
}
