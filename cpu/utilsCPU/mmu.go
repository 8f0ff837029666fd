package utilsCPU

import (
	"sync"

	"azzaros/memoria/utilsMemoria"
	"azzaros/utils/config"
	"azzaros/utils/logueador"
)

// -------------------------------- MMU --------------------------------- //

// MMU traduce direcciones virtuales de cualquier token consultando primero la TLB.
type MMU struct {
	mu      sync.Mutex
	tlb     *TLB
	memoria *utilsMemoria.Memoria
}

func NuevaMMU(cfg config.ConfigCPU, memoria *utilsMemoria.Memoria) *MMU {
	return &MMU{
		tlb:     NuevaTLB(cfg.TlbEntries, cfg.TlbReplacement),
		memoria: memoria,
	}
}

func (m *MMU) tamanioPagina() uint64 {
	return uint64(m.memoria.Config.PageSize)
}

func nroPagina(direccionLogica uint64, pagesize uint64) uint64 {
	return direccionLogica / pagesize
}

func desplazamiento(direccionLogica uint64, pagesize uint64) uint64 {
	return direccionLogica % pagesize
}

// Traducir devuelve la dirección física del byte va en el espacio identificado por token.
func (m *MMU) Traducir(token uint64, va uint64) (uint64, error) {
	ps := m.tamanioPagina()
	pagina := nroPagina(va, ps)

	m.mu.Lock()
	frame, hit := m.tlb.Hit(token, pagina)
	m.mu.Unlock()

	if hit {
		logueador.TLBHit(token, pagina)
	} else {
		logueador.TLBMiss(token, pagina)
		var err error
		frame, err = m.memoria.BuscarMarco(token, pagina)
		if err != nil {
			return 0, err
		}
		m.mu.Lock()
		m.tlb.Agregar(token, pagina, frame)
		m.mu.Unlock()
	}

	return uint64(frame)*ps + desplazamiento(va, ps), nil
}

// Invalidar se llama cada vez que se desmapea algo del token.
func (m *MMU) Invalidar(token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tlb.InvalidarToken(token)
}
