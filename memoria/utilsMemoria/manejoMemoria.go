package utilsMemoria

import (
	"azzaros/utils/logueador"
)

// -------------------------------- Manejo de Frames --------------------------------
// Todas las funciones de este archivo asumen m.mu tomado.

func (m *Memoria) inicializarOcupadas() {
	m.Ocupadas = make([]int, m.CantidadDeFrames())
	for i := range m.Ocupadas {
		m.Ocupadas[i] = -1
	}
}

func (m *Memoria) frameLibre(numero int) bool {
	return m.Ocupadas[numero] == -1
}

func (m *Memoria) primerFrameLibre(arranque int) int { // arranque => desde cual frame arranco a buscar
	for i := arranque; i < len(m.Ocupadas); i++ {
		if m.frameLibre(i) {
			return i
		}
	}
	logueador.Warn("No se encontraron frames libres")
	return -1 // memoria llena
}

func (m *Memoria) hayFramesDisponibles(n uint64) bool {
	var cant uint64
	for i := range m.Ocupadas {
		if cant >= n {
			return true
		}
		if m.frameLibre(i) {
			cant++
		}
	}
	return cant >= n
}

// asignarFrame toma el primer frame libre para pid y lo deja en cero.
func (m *Memoria) asignarFrame(pid uint) int {
	frame := m.primerFrameLibre(0)
	if frame < 0 {
		return -1
	}
	m.Ocupadas[frame] = int(pid)
	inicio := frame * m.Config.PageSize
	clear(m.EspacioUsuario[inicio : inicio+m.Config.PageSize])
	logueador.Debug("Frame %d asignado al PID %d", frame, pid)
	return frame
}

func (m *Memoria) liberarFrame(frame int) {
	if frame < 0 || frame >= len(m.Ocupadas) {
		return
	}
	logueador.Debug("Liberando frame %d del proceso %d", frame, m.Ocupadas[frame])
	m.Ocupadas[frame] = -1
}

// FramesDe cuenta los frames que pertenecen a pid.
func (m *Memoria) FramesDe(pid uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, dueño := range m.Ocupadas {
		if dueño == int(pid) {
			count++
		}
	}
	return count
}

func (m *Memoria) FramesLibres() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	libres := 0
	for i := range m.Ocupadas {
		if m.frameLibre(i) {
			libres++
		}
	}
	return libres
}
