package utilsMemoria

import (
	"errors"
	"fmt"
	"sync"

	"azzaros/utils/config"
	"azzaros/utils/logueador"
)

var (
	ErrDesalineado  = errors.New("dirección no alineada a página")
	ErrSolapamiento = errors.New("el rango se solapa con un área mapeada")
	ErrNoMapeado    = errors.New("el rango no está mapeado")
	ErrSinFrames    = errors.New("no quedan frames libres")
	ErrFueraDeRango = errors.New("dirección fuera de rango")
	ErrSinEspacio   = errors.New("token sin espacio de direcciones")
)

// Memoria simula la memoria física y las tablas de páginas de todos los procesos.
type Memoria struct {
	Config config.ConfigMemory

	mu             sync.Mutex
	EspacioUsuario []byte // memoriaPrincipal
	Ocupadas       []int  // frame -> PID dueño, -1 libre
	espacios       map[uint64]*EspacioDeDirecciones
	proximoToken   uint64
}

func NuevaMemoria(cfg config.ConfigMemory) *Memoria {
	m := &Memoria{
		Config:         cfg,
		EspacioUsuario: make([]byte, cfg.MemorySize),
		espacios:       make(map[uint64]*EspacioDeDirecciones),
		proximoToken:   1,
	}
	m.inicializarOcupadas()
	return m
}

func (m *Memoria) CantidadDeFrames() int {
	return m.Config.MemorySize / m.Config.PageSize
}

func (m *Memoria) CantidadDePaginas(tamanio uint64) uint64 {
	tamanioPagina := uint64(m.Config.PageSize)
	return (tamanio + tamanioPagina - 1) / tamanioPagina // Redondea hacia arriba
}

// NuevoEspacio crea un espacio de direcciones vacío para pid y lo registra bajo un token nuevo.
func (m *Memoria) NuevoEspacio(pid uint) *EspacioDeDirecciones {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &EspacioDeDirecciones{
		memoria:  m,
		PID:      pid,
		Token:    m.proximoToken,
		raiz:     m.nuevaTabla(m.Config.NumberOfLevels),
		baseHeap: m.Config.HeapBase,
		brk:      m.Config.HeapBase,
	}
	m.espacios[e.Token] = e
	m.proximoToken++

	logueador.CreacionDeEspacio(pid, e.Token)
	return e
}

func (m *Memoria) Espacio(token uint64) (*EspacioDeDirecciones, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.espacios[token]
	return e, ok
}

// LiberarEspacio devuelve todos los frames del token y lo da de baja.
func (m *Memoria) LiberarEspacio(token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.espacios[token]
	if !ok {
		return
	}
	e.recorrerHojas(func(vpn uint64, entrada *Entrada) {
		m.liberarFrame(entrada.NumeroDeFrame)
		*entrada = entradaVacia()
	})
	delete(m.espacios, token)
	logueador.Info("Liberado el espacio de direcciones del PID %d (token %d)", e.PID, token)
}

// BuscarMarco resuelve vpn en la tabla de páginas del token.
func (m *Memoria) BuscarMarco(token uint64, vpn uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.espacios[token]
	if !ok {
		return -1, fmt.Errorf("token %d: %w", token, ErrSinEspacio)
	}
	entrada, err := m.buscarEntrada(e.raiz, vpn, false)
	if err != nil {
		return -1, err
	}
	if entrada == nil || !entrada.Valida {
		return -1, fmt.Errorf("página %d del token %d: %w", vpn, token, ErrNoMapeado)
	}
	logueador.ObtenerMarco(token, vpn, entrada.NumeroDeFrame)
	return entrada.NumeroDeFrame, nil
}

func (m *Memoria) EscribirFisica(direccionFisica uint64, valor byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if direccionFisica >= uint64(len(m.EspacioUsuario)) {
		logueador.Error("Dirección fuera de rango: %d", direccionFisica)
		return fmt.Errorf("dirección física %d: %w", direccionFisica, ErrFueraDeRango)
	}
	m.EspacioUsuario[direccionFisica] = valor
	return nil
}

func (m *Memoria) LeerFisica(direccionFisica uint64) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if direccionFisica >= uint64(len(m.EspacioUsuario)) {
		return 0, fmt.Errorf("dirección física %d: %w", direccionFisica, ErrFueraDeRango)
	}
	return m.EspacioUsuario[direccionFisica], nil
}

// LeerVirtual lee tamanio bytes desde va traduciendo cada byte por separado.
func (m *Memoria) LeerVirtual(token uint64, va uint64, tamanio int) ([]byte, error) {
	e, ok := m.Espacio(token)
	if !ok {
		return nil, fmt.Errorf("token %d: %w", token, ErrSinEspacio)
	}
	leidos := make([]byte, tamanio)
	for i := range tamanio {
		pa, err := e.Traducir(va + uint64(i))
		if err != nil {
			return nil, err
		}
		if leidos[i], err = m.LeerFisica(pa); err != nil {
			return nil, err
		}
	}
	return leidos, nil
}
