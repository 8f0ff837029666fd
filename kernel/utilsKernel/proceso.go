package utilsKernel

import (
	"fmt"

	"azzaros/memoria/utilsMemoria"
)

// Proceso es el PCB: dueño de sus tareas, su espacio de direcciones y sus objetos de sincronización.
// Todo se accede con Kernel.mu tomado.
type Proceso struct {
	PID     uint
	Espacio *utilsMemoria.EspacioDeDirecciones

	tareas    []*Tarea
	mutexes   []Mutex
	semaforos []*Semaforo
	condvars  []*Condvar

	Recursos         *Recursos
	detectarDeadlock bool
}

func nuevoProceso(pid uint, espacio *utilsMemoria.EspacioDeDirecciones, detectar bool) *Proceso {
	return &Proceso{
		PID:              pid,
		Espacio:          espacio,
		Recursos:         NuevosRecursos(),
		detectarDeadlock: detectar,
	}
}

func (p *Proceso) Token() uint64 {
	return p.Espacio.Token
}

func (p *Proceso) Tareas() []*Tarea {
	return p.tareas
}

func (p *Proceso) DetectaDeadlock() bool {
	return p.detectarDeadlock
}

func (p *Proceso) vivas() int {
	vivas := 0
	for _, t := range p.tareas {
		if t.estado != EstadoZombie {
			vivas++
		}
	}
	return vivas
}

// ocuparSlot guarda v en el primer slot vacío o lo agrega al final.
func ocuparSlot[T comparable](slots *[]T, v T) int {
	var vacio T
	for i, s := range *slots {
		if s == vacio {
			(*slots)[i] = v
			return i
		}
	}
	*slots = append(*slots, v)
	return len(*slots) - 1
}

// Los ids inválidos hacen panic igual que un acceso fuera de rango.
func (p *Proceso) mutex(id int) Mutex {
	m := p.mutexes[id]
	if m == nil {
		panic(fmt.Sprintf("PID %d: mutex %d vacío", p.PID, id))
	}
	return m
}

func (p *Proceso) semaforo(id int) *Semaforo {
	s := p.semaforos[id]
	if s == nil {
		panic(fmt.Sprintf("PID %d: semaforo %d vacío", p.PID, id))
	}
	return s
}

func (p *Proceso) condvar(id int) *Condvar {
	c := p.condvars[id]
	if c == nil {
		panic(fmt.Sprintf("PID %d: condvar %d vacía", p.PID, id))
	}
	return c
}

// QuitarMutex vacía el slot para que la próxima creación lo reutilice.
func (p *Proceso) QuitarMutex(id int) error {
	if p.mutex(id).Ocupado() {
		return fmt.Errorf("mutex %d: %w", id, ErrRecursoEnUso)
	}
	p.mutexes[id] = nil
	return nil
}

func (p *Proceso) QuitarSemaforo(id int) error {
	if p.semaforo(id).EnEspera() > 0 {
		return fmt.Errorf("semaforo %d: %w", id, ErrRecursoEnUso)
	}
	p.semaforos[id] = nil
	return nil
}

func (p *Proceso) QuitarCondvar(id int) error {
	if p.condvar(id).EnEspera() > 0 {
		return fmt.Errorf("condvar %d: %w", id, ErrRecursoEnUso)
	}
	p.condvars[id] = nil
	return nil
}
