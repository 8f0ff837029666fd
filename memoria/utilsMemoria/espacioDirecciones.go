package utilsMemoria

import (
	"fmt"
	"math"

	"azzaros/utils/logueador"
	"azzaros/utils/structs"
)

// EspacioDeDirecciones es el espacio virtual de un proceso. Token lo identifica ante la MMU.
type EspacioDeDirecciones struct {
	memoria *Memoria

	PID   uint
	Token uint64

	raiz     *Tabla
	baseHeap uint64
	brk      uint64
}

func (e *EspacioDeDirecciones) tamanioPagina() uint64 {
	return uint64(e.memoria.Config.PageSize)
}

// rangoDePaginas devuelve [primera, ultima) cubriendo [inicio, fin).
// fin no puede estar en la última página del espacio de 64 bits: redondearlo daría la vuelta.
func (e *EspacioDeDirecciones) rangoDePaginas(inicio, fin uint64) (uint64, uint64, error) {
	ps := e.tamanioPagina()
	if fin < inicio || fin > math.MaxUint64-(ps-1) {
		return 0, 0, fmt.Errorf("rango [%#x, %#x): %w", inicio, fin, ErrFueraDeRango)
	}
	return inicio / ps, (fin + ps - 1) / ps, nil
}

func (e *EspacioDeDirecciones) recorrerHojas(visitar func(uint64, *Entrada)) {
	recorrerHojas(e.raiz, 0, uint64(e.memoria.Config.EntriesPerPage), visitar)
}

// EstaMapeado indica si alguna página de [inicio, fin) ya tiene frame.
func (e *EspacioDeDirecciones) EstaMapeado(inicio, fin uint64) bool {
	e.memoria.mu.Lock()
	defer e.memoria.mu.Unlock()

	primera, ultima, err := e.rangoDePaginas(inicio, fin)
	if err != nil {
		return true
	}
	return e.algunaMapeada(primera, ultima)
}

func (e *EspacioDeDirecciones) algunaMapeada(primera, ultima uint64) bool {
	for vpn := primera; vpn < ultima; vpn++ {
		if e.memoria.paginaMapeada(e.raiz, vpn) {
			return true
		}
	}
	return false
}

// InsertarArea respalda [inicio, fin) con frames nuevos. No modifica nada si falla.
func (e *EspacioDeDirecciones) InsertarArea(inicio, fin uint64, permisos structs.Permisos) error {
	e.memoria.mu.Lock()
	defer e.memoria.mu.Unlock()

	if inicio%e.tamanioPagina() != 0 {
		return fmt.Errorf("inicio %#x: %w", inicio, ErrDesalineado)
	}
	primera, ultima, err := e.rangoDePaginas(inicio, fin)
	if err != nil {
		return err
	}
	if err := e.mapearPaginas(primera, ultima, permisos); err != nil {
		return err
	}

	logueador.MapeoDeArea(e.PID, "MMAP", inicio, fin, permisos.String())
	return nil
}

// mapearPaginas asume memoria.mu tomado.
func (e *EspacioDeDirecciones) mapearPaginas(primera, ultima uint64, permisos structs.Permisos) error {
	m := e.memoria
	if ultima > m.paginasDireccionables() {
		return fmt.Errorf("página %d: %w", ultima-1, ErrFueraDeRango)
	}
	if e.algunaMapeada(primera, ultima) {
		return ErrSolapamiento
	}
	if !m.hayFramesDisponibles(ultima - primera) {
		return fmt.Errorf("se piden %d páginas: %w", ultima-primera, ErrSinFrames)
	}

	for vpn := primera; vpn < ultima; vpn++ {
		entrada, err := m.buscarEntrada(e.raiz, vpn, true)
		if err != nil {
			return err
		}
		entrada.NumeroDeFrame = m.asignarFrame(e.PID)
		entrada.Permisos = permisos
		entrada.Valida = true
	}
	return nil
}

// QuitarArea libera [inicio, fin). Todas las páginas del rango tienen que estar mapeadas.
func (e *EspacioDeDirecciones) QuitarArea(inicio, fin uint64) error {
	e.memoria.mu.Lock()
	defer e.memoria.mu.Unlock()

	if inicio%e.tamanioPagina() != 0 {
		return fmt.Errorf("inicio %#x: %w", inicio, ErrDesalineado)
	}
	primera, ultima, err := e.rangoDePaginas(inicio, fin)
	if err != nil {
		return err
	}
	if err := e.desmapearPaginas(primera, ultima); err != nil {
		return err
	}

	logueador.MapeoDeArea(e.PID, "MUNMAP", inicio, fin, "----")
	return nil
}

// desmapearPaginas asume memoria.mu tomado.
func (e *EspacioDeDirecciones) desmapearPaginas(primera, ultima uint64) error {
	m := e.memoria
	for vpn := primera; vpn < ultima; vpn++ {
		if !m.paginaMapeada(e.raiz, vpn) {
			return fmt.Errorf("página %d: %w", vpn, ErrNoMapeado)
		}
	}
	for vpn := primera; vpn < ultima; vpn++ {
		entrada, _ := m.buscarEntrada(e.raiz, vpn, false)
		m.liberarFrame(entrada.NumeroDeFrame)
		*entrada = entradaVacia()
	}
	return nil
}

// Traducir convierte una dirección virtual en física.
func (e *EspacioDeDirecciones) Traducir(va uint64) (uint64, error) {
	e.memoria.mu.Lock()
	defer e.memoria.mu.Unlock()

	ps := e.tamanioPagina()
	entrada, err := e.memoria.buscarEntrada(e.raiz, va/ps, false)
	if err != nil {
		return 0, err
	}
	if entrada == nil || !entrada.Valida {
		return 0, fmt.Errorf("dirección %#x: %w", va, ErrNoMapeado)
	}
	return uint64(entrada.NumeroDeFrame)*ps + va%ps, nil
}

func (e *EspacioDeDirecciones) Brk() uint64 {
	e.memoria.mu.Lock()
	defer e.memoria.mu.Unlock()
	return e.brk
}

// CambiarBrk mueve el break del heap delta bytes y devuelve el valor anterior.
func (e *EspacioDeDirecciones) CambiarBrk(delta int32) (uint64, error) {
	e.memoria.mu.Lock()
	defer e.memoria.mu.Unlock()

	viejo := e.brk
	nuevoConSigno := int64(viejo) + int64(delta)
	if nuevoConSigno < int64(e.baseHeap) {
		return 0, fmt.Errorf("brk %#x por debajo de la base del heap: %w", nuevoConSigno, ErrFueraDeRango)
	}
	nuevo := uint64(nuevoConSigno)

	_, paginasViejas, _ := e.rangoDePaginas(e.baseHeap, viejo)
	_, paginasNuevas, _ := e.rangoDePaginas(e.baseHeap, nuevo)

	switch {
	case paginasNuevas > paginasViejas:
		if err := e.mapearPaginas(paginasViejas, paginasNuevas, structs.PermisoR|structs.PermisoW|structs.PermisoU); err != nil {
			return 0, err
		}
	case paginasNuevas < paginasViejas:
		if err := e.desmapearPaginas(paginasNuevas, paginasViejas); err != nil {
			return 0, err
		}
	}

	e.brk = nuevo
	logueador.Debug("PID %d - brk %#x -> %#x", e.PID, viejo, nuevo)
	return viejo, nil
}
