package utilsKernel

import (
	"runtime"

	"azzaros/utils/logueador"
	"azzaros/utils/structs"
)

// ---------------------------- Syscalls ----------------------------//
// Todas se ejecutan sobre la tarea que tiene la CPU. Los errores se loguean
// acá y al usuario le llega -1.

// SyscallExit no vuelve.
func (k *Kernel) SyscallExit(codigo int) {
	t := k.comenzarSyscall(SYSCALL_EXIT)
	k.terminar(t, codigo)
	runtime.Goexit()
}

func (k *Kernel) SyscallYield() int {
	k.comenzarSyscall(SYSCALL_YIELD)
	k.SuspenderActual()
	return 0
}

// SyscallGetTime escribe un TimeVal en ts. tz se ignora.
func (k *Kernel) SyscallGetTime(ts uint64, tz uint64) int {
	t := k.comenzarSyscall(SYSCALL_GET_TIME)
	p := t.Proceso()

	tv := structs.TimeValDesdeMicros(k.reloj.AhoraUs())
	if err := k.copiarAUsuario(p.Token(), ts, tv.Bytes()); err != nil {
		logueador.Error("(%d:%d) GET_TIME: %v", p.PID, t.TID, err)
		return -1
	}
	logueador.EscrituraEnEspacioDeUsuario(p.PID, ts, structs.TamanioTimeVal)
	return 0
}

func (k *Kernel) SyscallTaskInfo(ti uint64) int {
	t := k.comenzarSyscall(SYSCALL_TASK_INFO)

	k.mu.Lock()
	p := t.Proceso()
	info := t.info(k.reloj.AhoraUs())
	k.mu.Unlock()

	if err := k.copiarAUsuario(p.Token(), ti, info.Bytes()); err != nil {
		logueador.Error("(%d:%d) TASK_INFO: %v", p.PID, t.TID, err)
		return -1
	}
	logueador.EscrituraEnEspacioDeUsuario(p.PID, ti, structs.TamanioTaskInfo)
	return 0
}

// SyscallMmap mapea [start, start+largo) con los permisos de port (bit0=R, bit1=W, bit2=X).
func (k *Kernel) SyscallMmap(start, largo, port uint64) int {
	t := k.comenzarSyscall(SYSCALL_MMAP)
	p := t.Proceso()

	permisos, ok := structs.PermisosDesdePuerto(port)
	if !ok {
		logueador.Error("(%d:%d) MMAP: port inválido %#x", p.PID, t.TID, port)
		return -1
	}
	if start%uint64(k.memoria.Config.PageSize) != 0 {
		logueador.Error("(%d:%d) MMAP: inicio %#x no alineado", p.PID, t.TID, start)
		return -1
	}
	if largo == 0 {
		return 0
	}
	if start+largo < start {
		logueador.Error("(%d:%d) MMAP: el rango %#x+%#x da la vuelta", p.PID, t.TID, start, largo)
		return -1
	}
	if err := p.Espacio.InsertarArea(start, start+largo, permisos); err != nil {
		logueador.Error("(%d:%d) MMAP: %v", p.PID, t.TID, err)
		return -1
	}
	return 0
}

func (k *Kernel) SyscallMunmap(start, largo uint64) int {
	t := k.comenzarSyscall(SYSCALL_MUNMAP)
	p := t.Proceso()

	if start%uint64(k.memoria.Config.PageSize) != 0 {
		logueador.Error("(%d:%d) MUNMAP: inicio %#x no alineado", p.PID, t.TID, start)
		return -1
	}
	if largo == 0 {
		return 0
	}
	if start+largo < start {
		logueador.Error("(%d:%d) MUNMAP: el rango %#x+%#x da la vuelta", p.PID, t.TID, start, largo)
		return -1
	}
	if err := p.Espacio.QuitarArea(start, start+largo); err != nil {
		logueador.Error("(%d:%d) MUNMAP: %v", p.PID, t.TID, err)
		return -1
	}
	k.mmu.Invalidar(p.Token())
	return 0
}

// SyscallSbrk devuelve el break anterior.
func (k *Kernel) SyscallSbrk(delta int32) int {
	t := k.comenzarSyscall(SYSCALL_SBRK)
	p := t.Proceso()

	viejo, err := p.Espacio.CambiarBrk(delta)
	if err != nil {
		logueador.Error("(%d:%d) SBRK %d: %v", p.PID, t.TID, delta, err)
		return -1
	}
	if delta < 0 {
		k.mmu.Invalidar(p.Token())
	}
	return int(viejo)
}

func (k *Kernel) SyscallSleep(ms uint64) int {
	k.comenzarSyscall(SYSCALL_SLEEP)
	k.dormirActual(ms)
	return 0
}

// SyscallSetPriority devuelve la prioridad nueva, o -1 si es menor a PrioridadMinima.
func (k *Kernel) SyscallSetPriority(prioridad int64) int {
	t := k.comenzarSyscall(SYSCALL_SET_PRIORITY)
	if prioridad < PrioridadMinima {
		logueador.Error("(%d:%d) SET_PRIORITY: prioridad %d inválida", t.pid(), t.TID, prioridad)
		return -1
	}

	k.mu.Lock()
	t.prioridad = uint64(prioridad)
	t.pass = k.Config.BigStride / t.prioridad
	k.mu.Unlock()
	return int(prioridad)
}

func (k *Kernel) SyscallGetPid() int {
	t := k.comenzarSyscall(SYSCALL_GETPID)
	return int(t.pid())
}

func (k *Kernel) SyscallGetTid() int {
	t := k.comenzarSyscall(SYSCALL_GETTID)
	return t.TID
}
