package utilsKernel

import (
	"cmp"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"azzaros/utils"
	"azzaros/utils/logueador"
)

// ---------------------------- Syscalls por número ----------------------------//

// Syscall despacha por número de syscall con los argumentos crudos del usuario.
// Los números desconocidos devuelven -1.
func (k *Kernel) Syscall(id int, args [3]uint64) int {
	switch id {
	case SYSCALL_EXIT:
		k.SyscallExit(int(int32(args[0])))
		return 0
	case SYSCALL_YIELD:
		return k.SyscallYield()
	case SYSCALL_GET_TIME:
		return k.SyscallGetTime(args[0], args[1])
	case SYSCALL_TASK_INFO:
		return k.SyscallTaskInfo(args[0])
	case SYSCALL_MMAP:
		return k.SyscallMmap(args[0], args[1], args[2])
	case SYSCALL_MUNMAP:
		return k.SyscallMunmap(args[0], args[1])
	case SYSCALL_SBRK:
		return k.SyscallSbrk(int32(args[0]))
	case SYSCALL_SLEEP:
		return k.SyscallSleep(args[0])
	case SYSCALL_SET_PRIORITY:
		return k.SyscallSetPriority(int64(args[0]))
	case SYSCALL_GETPID:
		return k.SyscallGetPid()
	case SYSCALL_GETTID:
		return k.SyscallGetTid()
	case SYSCALL_MUTEX_CREATE:
		return k.SyscallMutexCreate(args[0] != 0)
	case SYSCALL_MUTEX_LOCK:
		return k.SyscallMutexLock(int(args[0]))
	case SYSCALL_MUTEX_UNLOCK:
		return k.SyscallMutexUnlock(int(args[0]))
	case SYSCALL_SEMAPHORE_CREATE:
		return k.SyscallSemaphoreCreate(int(int64(args[0])))
	case SYSCALL_SEMAPHORE_UP:
		return k.SyscallSemaphoreUp(int(args[0]))
	case SYSCALL_SEMAPHORE_DOWN:
		return k.SyscallSemaphoreDown(int(args[0]))
	case SYSCALL_CONDVAR_CREATE:
		return k.SyscallCondvarCreate()
	case SYSCALL_CONDVAR_SIGNAL:
		return k.SyscallCondvarSignal(int(args[0]))
	case SYSCALL_CONDVAR_WAIT:
		return k.SyscallCondvarWait(int(args[0]), int(args[1]))
	case SYSCALL_ENABLE_DEADLOCK_DETECT:
		return k.SyscallEnableDeadlockDetect(int(int64(args[0])))
	}

	t := k.TareaActual()
	logueador.Error("(%d:%d) Syscall desconocida: %d", t.pid(), t.TID, id)
	return -1
}

// ---------------------------- Handlers ----------------------------//

type EstadoDeTarea struct {
	PID       uint              `json:"pid"`
	TID       int               `json:"tid"`
	Estado    string            `json:"estado"`
	Motivo    string            `json:"motivo"`
	Prioridad uint64            `json:"prioridad"`
	Stride    uint64            `json:"stride"`
	Pass      uint64            `json:"pass"`
	TiempoMs  uint64            `json:"tiempo_ms"`
	Conteo    map[string]int    `json:"metricas_conteo"`
	TiempoUs  map[string]uint64 `json:"metricas_tiempo_us"`
}

// Estado devuelve una foto de todas las tareas, ordenadas por PID y TID.
func (k *Kernel) Estado() []EstadoDeTarea {
	procesos := k.procesos.Valores()
	slices.SortFunc(procesos, func(a, b *Proceso) int { return cmp.Compare(a.PID, b.PID) })

	k.mu.Lock()
	defer k.mu.Unlock()

	ahora := k.reloj.AhoraUs()
	var estados []EstadoDeTarea
	for _, p := range procesos {
		for _, t := range p.tareas {
			estados = append(estados, EstadoDeTarea{
				PID:       p.PID,
				TID:       t.TID,
				Estado:    t.estado.String(),
				Motivo:    t.motivo.String(),
				Prioridad: t.prioridad,
				Stride:    t.stride,
				Pass:      t.pass,
				TiempoMs:  t.TiempoMs(ahora),
				Conteo:    maps.Clone(t.MetricasConteo),
				TiempoUs:  maps.Clone(t.MetricasTiempo),
			})
		}
	}
	return estados
}

func (k *Kernel) HandleEstado(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}
	utils.ResponderJSON(w, k.Estado())
}

type EstadoDeRecursos struct {
	PID              uint      `json:"pid"`
	DetectarDeadlock bool      `json:"detectar_deadlock"`
	Conservado       bool      `json:"conservado"`
	Matrices         *Recursos `json:"matrices"`
}

func (k *Kernel) procesoDesdeQuery(w http.ResponseWriter, r *http.Request) (*Proceso, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return nil, false
	}
	pid, err := strconv.ParseUint(r.URL.Query().Get("pid"), 10, 32)
	if err != nil {
		logueador.Error("pid inválido en %s (%v)", r.URL.Path, err)
		http.Error(w, "pid inválido", http.StatusBadRequest)
		return nil, false
	}
	p, ok := k.Proceso(uint(pid))
	if !ok {
		http.Error(w, "proceso inexistente", http.StatusNotFound)
		return nil, false
	}
	return p, true
}

func (k *Kernel) HandleRecursos(w http.ResponseWriter, r *http.Request) {
	p, ok := k.procesoDesdeQuery(w, r)
	if !ok {
		return
	}

	k.mu.Lock()
	estado := EstadoDeRecursos{
		PID:              p.PID,
		DetectarDeadlock: p.detectarDeadlock,
		Conservado:       p.Recursos.Conservado(),
		Matrices:         p.Recursos.Copia(),
	}
	k.mu.Unlock()

	utils.ResponderJSON(w, estado)
}

func (k *Kernel) HandleGrafoEspera(w http.ResponseWriter, r *http.Request) {
	p, ok := k.procesoDesdeQuery(w, r)
	if !ok {
		return
	}

	k.mu.Lock()
	grafo := p.Recursos.GrafoEspera()
	k.mu.Unlock()

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	grafo.EscribirDot(w)
}

// Rutas arma el mux de depuración del kernel.
func (k *Kernel) Rutas() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/estado", k.HandleEstado)
	mux.HandleFunc("/recursos", k.HandleRecursos)
	mux.HandleFunc("/grafo-espera", k.HandleGrafoEspera)
	mux.HandleFunc("/memoria", k.memoria.MostrarMemoria)
	mux.HandleFunc("/ocupadas", k.memoria.MostrarOcupadas)
	mux.HandleFunc("/memoria-virtual", k.memoria.MostrarVirtual)
	return mux
}
