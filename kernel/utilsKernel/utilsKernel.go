package utilsKernel

import (
	"context"
	"fmt"
	"sync"

	"azzaros/cpu/utilsCPU"
	"azzaros/memoria/utilsMemoria"
	"azzaros/utils/config"
	"azzaros/utils/logueador"
	"azzaros/utils/structs"
)

// Kernel es el planificador de un único core. Se crea una vez al arrancar y vive
// hasta que termina el programa.
//
// Cada tarea corre en su propia goroutine pero sólo avanza la que tiene la CPU:
// el despachador le escribe en reanudar y espera en cpuLibre a que la devuelva.
type Kernel struct {
	Config  config.ConfigKernel
	memoria *utilsMemoria.Memoria
	mmu     *utilsCPU.MMU
	reloj   Reloj

	// procesos se puede consultar sin k.mu, p. ej. desde los handlers.
	procesos *structs.MapSeguro[uint, *Proceso]

	// mu es la sección exclusiva: cola de ready, matrices y estados.
	// Nunca se mantiene tomado mientras una tarea cede la CPU.
	mu               sync.Mutex
	planificador     Planificador
	proximoPID       uint
	actual           *Tarea
	vivas            int
	timersPendientes int

	cpuLibre chan struct{}
	eventos  chan struct{} // despierta al despachador cuando está ocioso
}

// Nuevo falla si la configuración no permite calcular el pass de una tarea.
func Nuevo(cfg config.ConfigKernel, memoria *utilsMemoria.Memoria, mmu *utilsCPU.MMU, reloj Reloj) (*Kernel, error) {
	if cfg.BigStride == 0 {
		return nil, fmt.Errorf("big_stride 0: %w", ErrConfigInvalida)
	}
	if cfg.DefaultPriority < PrioridadMinima {
		return nil, fmt.Errorf("default_priority %d menor a %d: %w", cfg.DefaultPriority, PrioridadMinima, ErrConfigInvalida)
	}
	return &Kernel{
		Config:   cfg,
		memoria:  memoria,
		mmu:      mmu,
		reloj:    reloj,
		procesos: structs.NewMapSeguro[uint, *Proceso](),
		cpuLibre: make(chan struct{}, 1),
		eventos:  make(chan struct{}, 1),
	}, nil
}

func (k *Kernel) CrearProceso() *Proceso {
	k.mu.Lock()
	defer k.mu.Unlock()

	pid := k.proximoPID
	k.proximoPID++
	p := nuevoProceso(pid, k.memoria.NuevoEspacio(pid), k.Config.DeadlockDetect)
	k.procesos.Agregar(pid, p)

	logueador.Info("## (%d) Se crea el proceso", pid)
	return p
}

func (k *Kernel) Proceso(pid uint) (*Proceso, bool) {
	return k.procesos.Obtener(pid)
}

// CrearTarea usa la prioridad por defecto, que Nuevo ya validó.
func (k *Kernel) CrearTarea(p *Proceso, programa Programa) *Tarea {
	return k.crearTarea(p, k.Config.DefaultPriority, programa)
}

// CrearTareaConPrioridad agrega una tarea a p y la deja en READY.
func (k *Kernel) CrearTareaConPrioridad(p *Proceso, prioridad uint64, programa Programa) (*Tarea, error) {
	if prioridad < PrioridadMinima {
		return nil, fmt.Errorf("prioridad %d menor a %d: %w", prioridad, PrioridadMinima, ErrPrioridadInvalida)
	}
	return k.crearTarea(p, prioridad, programa), nil
}

func (k *Kernel) crearTarea(p *Proceso, prioridad uint64, programa Programa) *Tarea {
	k.mu.Lock()
	t := nuevaTarea(p, len(p.tareas), prioridad, k.Config.BigStride, k.reloj.AhoraUs(), programa)
	p.tareas = append(p.tareas, t)
	p.Recursos.AgregarTarea(t.TID)
	k.vivas++
	k.moverTarea(t, EstadoReady)
	k.planificador.Agregar(t)
	k.mu.Unlock()

	// Log obligatorio 2/9
	logueador.CreacionDeTarea(p.PID, t.TID, prioridad)

	go k.ejecutar(t)
	k.avisar()
	return t
}

func (k *Kernel) ejecutar(t *Tarea) {
	<-t.reanudar
	codigo := t.programa()
	k.terminar(t, codigo)
}

// Correr despacha tareas hasta que no quede ninguna viva. Devuelve ErrTodasBloqueadas
// si las que quedan no tienen forma de despertarse.
func (k *Kernel) Correr(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		k.mu.Lock()
		t := k.planificador.Obtener()
		if t == nil {
			vivas, pendientes := k.vivas, k.timersPendientes
			k.mu.Unlock()

			if vivas == 0 {
				logueador.Info("No quedan tareas vivas, se detiene el planificador")
				return nil
			}
			if pendientes == 0 {
				return fmt.Errorf("%d tareas vivas: %w", vivas, ErrTodasBloqueadas)
			}
			select {
			case <-k.eventos:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		t.stride += t.pass
		k.moverTarea(t, EstadoRunning)
		k.actual = t
		k.mu.Unlock()

		// Log obligatorio 5/9
		logueador.Despacho(t.pid(), t.TID, t.stride)

		t.reanudar <- struct{}{}
		<-k.cpuLibre

		k.mu.Lock()
		k.actual = nil
		k.mu.Unlock()
	}
}

func (k *Kernel) avisar() {
	select {
	case k.eventos <- struct{}{}:
	default:
	}
}

// cederCPU le devuelve la CPU al despachador y espera a que la vuelva a elegir.
func (k *Kernel) cederCPU(t *Tarea) {
	k.cpuLibre <- struct{}{}
	<-t.reanudar
}

func (k *Kernel) TareaActual() *Tarea {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.actual
}

func (k *Kernel) BloquearActual(motivo MotivoBloqueo) {
	k.mu.Lock()
	t := k.actual
	t.motivo = motivo
	k.moverTarea(t, EstadoBlocked)
	k.mu.Unlock()

	// Log obligatorio 4/9
	logueador.MotivoDeBloqueo(t.pid(), t.TID, motivo.String())
	k.cederCPU(t)
}

func (k *Kernel) SuspenderActual() {
	k.mu.Lock()
	t := k.actual
	k.moverTarea(t, EstadoReady)
	k.planificador.Agregar(t)
	k.mu.Unlock()

	k.cederCPU(t)
}

func (k *Kernel) Despertar(t *Tarea) {
	k.mu.Lock()
	k.despertar(t)
	k.mu.Unlock()
	k.avisar()
}

// despertar asume k.mu tomado. Sólo las tareas BLOCKED vuelven a READY.
func (k *Kernel) despertar(t *Tarea) {
	if t.estado != EstadoBlocked {
		logueador.Warn("(%d:%d) Se intentó despertar una tarea en %s", t.pid(), t.TID, t.estado)
		return
	}
	t.motivo = SinMotivo
	k.moverTarea(t, EstadoReady)
	k.planificador.Agregar(t)
}

// dormirActual bloquea la tarea actual al menos ms milisegundos.
func (k *Kernel) dormirActual(ms uint64) {
	k.mu.Lock()
	t := k.actual
	expira := (k.reloj.AhoraUs()+999)/1000 + ms
	t.motivo = MotivoSleep
	k.moverTarea(t, EstadoBlocked)
	k.timersPendientes++
	k.mu.Unlock()

	k.reloj.DespertarEn(expira, func() {
		k.mu.Lock()
		k.timersPendientes--
		k.despertar(t)
		k.mu.Unlock()
		k.avisar()
	})

	logueador.MotivoDeBloqueo(t.pid(), t.TID, MotivoSleep.String())
	k.cederCPU(t)
}

// terminar pasa t a ZOMBIE y devuelve la CPU. Con la última tarea del proceso se libera su memoria.
func (k *Kernel) terminar(t *Tarea, codigo int) {
	k.mu.Lock()
	t.codigoSalida = codigo
	k.moverTarea(t, EstadoZombie)
	k.vivas--
	p := t.Proceso()
	ultima := p != nil && p.vivas() == 0
	k.mu.Unlock()

	// Log obligatorio 6/9
	logueador.FinDeTarea(t.pid(), t.TID, codigo)
	// Log obligatorio 9/9
	logueador.MetricasDeEstado(t.pid(), t.TID, t.MetricasConteo)

	if ultima {
		k.mmu.Invalidar(p.Token())
		k.memoria.LiberarEspacio(p.Token())
	}

	k.cpuLibre <- struct{}{}
}
