package utilsKernel

import "errors"

// ---------------------------- Syscalls ----------------------------//
// Números de syscall, los mismos que usa el runtime de usuario.
const (
	SYSCALL_SLEEP                  = 101
	SYSCALL_YIELD                  = 124
	SYSCALL_SET_PRIORITY           = 140
	SYSCALL_GET_TIME               = 169
	SYSCALL_GETPID                 = 172
	SYSCALL_GETTID                 = 178
	SYSCALL_EXIT                   = 93
	SYSCALL_SBRK                   = 214
	SYSCALL_MUNMAP                 = 215
	SYSCALL_MMAP                   = 222
	SYSCALL_TASK_INFO              = 410
	SYSCALL_MUTEX_CREATE           = 463
	SYSCALL_MUTEX_LOCK             = 464
	SYSCALL_MUTEX_UNLOCK           = 466
	SYSCALL_SEMAPHORE_CREATE       = 467
	SYSCALL_SEMAPHORE_UP           = 468
	SYSCALL_ENABLE_DEADLOCK_DETECT = 469
	SYSCALL_SEMAPHORE_DOWN         = 470
	SYSCALL_CONDVAR_CREATE         = 471
	SYSCALL_CONDVAR_SIGNAL         = 472
	SYSCALL_CONDVAR_WAIT           = 473
)

var nombresSyscall = map[int]string{
	SYSCALL_SLEEP:                  "SLEEP",
	SYSCALL_YIELD:                  "YIELD",
	SYSCALL_SET_PRIORITY:           "SET_PRIORITY",
	SYSCALL_GET_TIME:               "GET_TIME",
	SYSCALL_GETPID:                 "GETPID",
	SYSCALL_GETTID:                 "GETTID",
	SYSCALL_EXIT:                   "EXIT",
	SYSCALL_SBRK:                   "SBRK",
	SYSCALL_MUNMAP:                 "MUNMAP",
	SYSCALL_MMAP:                   "MMAP",
	SYSCALL_TASK_INFO:              "TASK_INFO",
	SYSCALL_MUTEX_CREATE:           "MUTEX_CREATE",
	SYSCALL_MUTEX_LOCK:             "MUTEX_LOCK",
	SYSCALL_MUTEX_UNLOCK:           "MUTEX_UNLOCK",
	SYSCALL_SEMAPHORE_CREATE:       "SEMAPHORE_CREATE",
	SYSCALL_SEMAPHORE_UP:           "SEMAPHORE_UP",
	SYSCALL_ENABLE_DEADLOCK_DETECT: "ENABLE_DEADLOCK_DETECT",
	SYSCALL_SEMAPHORE_DOWN:         "SEMAPHORE_DOWN",
	SYSCALL_CONDVAR_CREATE:         "CONDVAR_CREATE",
	SYSCALL_CONDVAR_SIGNAL:         "CONDVAR_SIGNAL",
	SYSCALL_CONDVAR_WAIT:           "CONDVAR_WAIT",
}

// CodigoDeadlock es lo que devuelve una syscall cuando el pedido dejaría al proceso en deadlock.
const CodigoDeadlock = -0xdead

// PrioridadMinima es la menor prioridad aceptada por SET_PRIORITY.
const PrioridadMinima = 2

var (
	ErrTodasBloqueadas   = errors.New("todas las tareas vivas están bloqueadas y no hay timers pendientes")
	ErrRecursoEnUso      = errors.New("el recurso está tomado o tiene tareas esperando")
	ErrNoAsignado        = errors.New("la tarea no tiene unidades asignadas del recurso")
	ErrConfigInvalida    = errors.New("configuración del kernel inválida")
	ErrPrioridadInvalida = errors.New("prioridad inválida")
)
