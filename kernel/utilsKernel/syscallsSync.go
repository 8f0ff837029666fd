package utilsKernel

import (
	"azzaros/utils/logueador"
)

// ---------------------------- Syscalls de sincronización ----------------------------//
// Las matrices siempre se actualizan, aunque la detección esté apagada.
// La unidad la asigna quien completa la entrega: la propia tarea si tomó el
// recurso sin esperar, o quien lo libera si se lo pasa a una que esperaba.

// solicitar registra el pedido y corre el chequeo. Si el pedido deja al proceso
// en deadlock lo deshace y devuelve CodigoDeadlock. Asume k.mu tomado.
func (k *Kernel) solicitar(p *Proceso, t *Tarea, rec Recurso) int {
	p.Recursos.Solicitar(t.TID, rec)
	if !p.detectarDeadlock || !p.Recursos.HayDeadlock() {
		return 0
	}

	ciclo := p.Recursos.GrafoEspera().TareasEnCiclo()
	p.Recursos.Abandonar(t.TID, rec)
	// Log obligatorio 7/9
	logueador.DeadlockDetectado(p.PID, t.TID, rec.String(), ciclo)
	return CodigoDeadlock
}

// entregar le asigna a t la unidad que acaba de recibir.
func (k *Kernel) entregar(p *Proceso, t *Tarea, rec Recurso) {
	k.mu.Lock()
	p.Recursos.Asignar(t.TID, rec)
	k.mu.Unlock()
}

func (k *Kernel) SyscallMutexCreate(bloqueante bool) int {
	k.comenzarSyscall(SYSCALL_MUTEX_CREATE)

	k.mu.Lock()
	_, p := k.procesoActual()
	var m Mutex = NuevoMutexSpin(k)
	if bloqueante {
		m = NuevoMutexBloqueante(k)
	}
	id := ocuparSlot(&p.mutexes, m)
	p.Recursos.Inicializar(Recurso{Tipo: RecursoMutex, ID: id}, 1, 1)
	k.mu.Unlock()

	// Log obligatorio 8/9
	logueador.CreacionDeRecurso(p.PID, "mutex", id)
	return id
}

func (k *Kernel) SyscallMutexLock(id int) int {
	k.comenzarSyscall(SYSCALL_MUTEX_LOCK)
	rec := Recurso{Tipo: RecursoMutex, ID: id}

	k.mu.Lock()
	t, p := k.procesoActual()
	m := p.mutex(id)
	if codigo := k.solicitar(p, t, rec); codigo != 0 {
		k.mu.Unlock()
		return codigo
	}
	k.mu.Unlock()

	if m.Bloquear() {
		k.entregar(p, t, rec)
	}
	return 0
}

func (k *Kernel) SyscallMutexUnlock(id int) int {
	k.comenzarSyscall(SYSCALL_MUTEX_UNLOCK)
	k.liberarMutex(id)
	return 0
}

// liberarMutex suelta el lock de la tarea actual y, si había alguien esperando,
// le deja la unidad asignada. Devuelve false si la tarea no tenía el lock.
func (k *Kernel) liberarMutex(id int) bool {
	rec := Recurso{Tipo: RecursoMutex, ID: id}

	k.mu.Lock()
	t, p := k.procesoActual()
	m := p.mutex(id)
	if err := p.Recursos.Liberar(t.TID, rec); err != nil {
		k.mu.Unlock()
		logueador.Warn("(%d:%d) Unlock del mutex %d ignorado: %v", p.PID, t.TID, id, err)
		return false
	}
	k.mu.Unlock()

	if siguiente := m.Desbloquear(); siguiente != nil {
		k.entregar(p, siguiente, rec)
	}
	return true
}

// SyscallSemaphoreCreate devuelve -1 si la cuenta inicial es negativa.
func (k *Kernel) SyscallSemaphoreCreate(cuenta int) int {
	k.comenzarSyscall(SYSCALL_SEMAPHORE_CREATE)
	if cuenta < 0 {
		logueador.Error("SEMAPHORE_CREATE: cuenta inicial %d inválida", cuenta)
		return -1
	}

	k.mu.Lock()
	_, p := k.procesoActual()
	id := ocuparSlot(&p.semaforos, NuevoSemaforo(k, cuenta))
	p.Recursos.Inicializar(Recurso{Tipo: RecursoSemaforo, ID: id}, cuenta, cuenta)
	k.mu.Unlock()

	logueador.CreacionDeRecurso(p.PID, "semaforo", id)
	return id
}

// SyscallSemaphoreUp devuelve una unidad si la tarea tenía alguna asignada;
// si no, la unidad es nueva.
func (k *Kernel) SyscallSemaphoreUp(id int) int {
	k.comenzarSyscall(SYSCALL_SEMAPHORE_UP)
	rec := Recurso{Tipo: RecursoSemaforo, ID: id}

	k.mu.Lock()
	t, p := k.procesoActual()
	s := p.semaforo(id)
	if p.Recursos.Asignadas(t.TID, rec) > 0 {
		_ = p.Recursos.Liberar(t.TID, rec)
	} else {
		p.Recursos.AgregarUnidad(rec)
	}
	k.mu.Unlock()

	if siguiente := s.Subir(); siguiente != nil {
		k.entregar(p, siguiente, rec)
	}
	return 0
}

func (k *Kernel) SyscallSemaphoreDown(id int) int {
	k.comenzarSyscall(SYSCALL_SEMAPHORE_DOWN)
	rec := Recurso{Tipo: RecursoSemaforo, ID: id}

	k.mu.Lock()
	t, p := k.procesoActual()
	s := p.semaforo(id)
	if codigo := k.solicitar(p, t, rec); codigo != 0 {
		k.mu.Unlock()
		return codigo
	}
	k.mu.Unlock()

	if s.Bajar() {
		k.entregar(p, t, rec)
	}
	return 0
}

func (k *Kernel) SyscallCondvarCreate() int {
	k.comenzarSyscall(SYSCALL_CONDVAR_CREATE)

	k.mu.Lock()
	_, p := k.procesoActual()
	id := ocuparSlot(&p.condvars, NuevaCondvar(k))
	k.mu.Unlock()

	logueador.CreacionDeRecurso(p.PID, "condvar", id)
	return id
}

func (k *Kernel) SyscallCondvarSignal(id int) int {
	k.comenzarSyscall(SYSCALL_CONDVAR_SIGNAL)

	k.mu.Lock()
	_, p := k.procesoActual()
	c := p.condvar(id)
	k.mu.Unlock()

	c.Señalar()
	return 0
}

// SyscallCondvarWait suelta el mutex, espera la señal y lo vuelve a tomar.
// Devuelve -1 sin esperar si la tarea no tenía el mutex.
// El pedido de vuelta no pasa por el chequeo de deadlock.
func (k *Kernel) SyscallCondvarWait(condvarID, mutexID int) int {
	k.comenzarSyscall(SYSCALL_CONDVAR_WAIT)
	rec := Recurso{Tipo: RecursoMutex, ID: mutexID}

	k.mu.Lock()
	t, p := k.procesoActual()
	c := p.condvar(condvarID)
	m := p.mutex(mutexID)
	k.mu.Unlock()

	if !k.liberarMutex(mutexID) {
		return -1
	}
	c.Esperar()

	k.mu.Lock()
	p.Recursos.Solicitar(t.TID, rec)
	k.mu.Unlock()
	if m.Bloquear() {
		k.entregar(p, t, rec)
	}
	return 0
}

// SyscallEnableDeadlockDetect prende la detección sólo con 1; cualquier otro valor la apaga.
func (k *Kernel) SyscallEnableDeadlockDetect(habilitar int) int {
	k.comenzarSyscall(SYSCALL_ENABLE_DEADLOCK_DETECT)

	k.mu.Lock()
	defer k.mu.Unlock()
	_, p := k.procesoActual()
	p.detectarDeadlock = habilitar == 1
	logueador.Info("## (%d) Detección de deadlock: %t", p.PID, p.detectarDeadlock)
	return 0
}
