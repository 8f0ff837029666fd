package utilsKernel

import (
	"azzaros/utils/logueador"
)

// Mueve la tarea a su nuevo estado EJ: de READY a RUNNING, acumulando el tiempo que pasó en el anterior.
// Asume k.mu tomado.
func (k *Kernel) moverTarea(t *Tarea, estadoNuevo EstadoTarea) {
	estadoActual := t.estado
	ahora := k.reloj.AhoraUs()

	t.MetricasTiempo[estadoActual.String()] += ahora - t.ultimoCambioUs
	t.ultimoCambioUs = ahora
	t.estado = estadoNuevo
	t.MetricasConteo[estadoNuevo.String()]++

	// Log obligatorio 3/9
	logueador.CambioDeEstado(t.pid(), t.TID, estadoActual.String(), estadoNuevo.String())
}

// procesoActual devuelve la tarea actual y su proceso. Asume k.mu tomado.
func (k *Kernel) procesoActual() (*Tarea, *Proceso) {
	t := k.actual
	return t, t.Proceso()
}

// comenzarSyscall cuenta la syscall en la tarea actual y la loguea.
func (k *Kernel) comenzarSyscall(id int) *Tarea {
	k.mu.Lock()
	t := k.actual
	t.contarSyscall(id)
	k.mu.Unlock()

	// Log obligatorio 1/9
	logueador.SyscallRecibida(t.pid(), t.TID, nombresSyscall[id])
	return t
}
