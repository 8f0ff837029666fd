package utilsKernel

import (
	"weak"

	"azzaros/utils/structs"
)

// EstadoTarea se copia tal cual al campo status de TaskInfo.
type EstadoTarea uint32

const (
	EstadoSinIniciar EstadoTarea = iota
	EstadoReady
	EstadoRunning
	EstadoBlocked
	EstadoZombie
)

func (e EstadoTarea) String() string {
	switch e {
	case EstadoSinIniciar:
		return "SIN_INICIAR"
	case EstadoReady:
		return "READY"
	case EstadoRunning:
		return "RUNNING"
	case EstadoBlocked:
		return "BLOCKED"
	case EstadoZombie:
		return "ZOMBIE"
	}
	return "DESCONOCIDO"
}

type MotivoBloqueo int

const (
	SinMotivo MotivoBloqueo = iota
	MotivoSleep
	MotivoMutex
	MotivoSemaforo
	MotivoCondvar
)

func (m MotivoBloqueo) String() string {
	switch m {
	case MotivoSleep:
		return "SLEEP"
	case MotivoMutex:
		return "MUTEX"
	case MotivoSemaforo:
		return "SEMAFORO"
	case MotivoCondvar:
		return "CONDVAR"
	}
	return "-"
}

// Programa es el código de usuario de una tarea. Lo que devuelve es su código de salida.
type Programa func() int

// Tarea es el TCB. El proceso es su dueño; la cola de ready y las colas de espera
// sólo guardan referencias.
type Tarea struct {
	TID     int // fila en las matrices de recursos del proceso
	proceso weak.Pointer[Proceso]

	estado    EstadoTarea
	motivo    MotivoBloqueo
	stride    uint64
	pass      uint64
	prioridad uint64

	syscalls     [structs.MaxSyscallNum]uint32
	inicioUs     uint64
	codigoSalida int

	MetricasConteo map[string]int
	MetricasTiempo map[string]uint64 // us acumulados por estado
	ultimoCambioUs uint64

	programa Programa
	reanudar chan struct{}
}

func nuevaTarea(p *Proceso, tid int, prioridad uint64, bigStride uint64, ahoraUs uint64, programa Programa) *Tarea {
	return &Tarea{
		TID:            tid,
		proceso:        weak.Make(p),
		estado:         EstadoSinIniciar,
		prioridad:      prioridad,
		pass:           bigStride / prioridad,
		inicioUs:       ahoraUs,
		MetricasConteo: make(map[string]int),
		MetricasTiempo: make(map[string]uint64),
		ultimoCambioUs: ahoraUs,
		programa:       programa,
		reanudar:       make(chan struct{}, 1),
	}
}

// Proceso devuelve el dueño de la tarea, o nil si ya no existe.
func (t *Tarea) Proceso() *Proceso {
	return t.proceso.Value()
}

func (t *Tarea) pid() uint {
	if p := t.Proceso(); p != nil {
		return p.PID
	}
	return 0
}

func (t *Tarea) Estado() EstadoTarea { return t.estado }
func (t *Tarea) Stride() uint64      { return t.stride }
func (t *Tarea) Pass() uint64        { return t.pass }
func (t *Tarea) Prioridad() uint64   { return t.prioridad }
func (t *Tarea) InicioUs() uint64    { return t.inicioUs }
func (t *Tarea) CodigoSalida() int   { return t.codigoSalida }

func (t *Tarea) ConteoSyscall(id int) uint32 {
	return t.syscalls[id]
}

func (t *Tarea) contarSyscall(id int) {
	if id >= 0 && id < structs.MaxSyscallNum {
		t.syscalls[id]++
	}
}

// TiempoMs es lo transcurrido desde que se creó la tarea.
func (t *Tarea) TiempoMs(ahoraUs uint64) uint64 {
	return (ahoraUs - t.inicioUs) / 1000
}

func (t *Tarea) info(ahoraUs uint64) structs.TaskInfo {
	return structs.TaskInfo{
		Estado:   uint32(t.estado),
		Syscalls: t.syscalls,
		TiempoMs: t.TiempoMs(ahoraUs),
	}
}

// strideMenor compara strides tolerando que el contador dé la vuelta.
// Vale mientras las strides vivas estén a menos de 2^63 entre sí.
func strideMenor(a, b uint64) bool {
	return int64(a-b) < 0
}
