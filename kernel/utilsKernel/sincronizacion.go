package utilsKernel

import "sync"

// Planificacion es lo que los objetos de sincronización necesitan del kernel
// para bloquear y despertar tareas. Nunca se la llama con el lock propio del objeto tomado.
type Planificacion interface {
	TareaActual() *Tarea
	// BloquearActual pasa la tarea actual a BLOCKED y cede la CPU hasta que la despierten.
	BloquearActual(motivo MotivoBloqueo)
	// SuspenderActual devuelve la tarea actual a READY y cede la CPU.
	SuspenderActual()
	Despertar(t *Tarea)
}

// ---------------------------- Mutex ----------------------------//

// Mutex es un lock exclusivo.
type Mutex interface {
	// Bloquear vuelve cuando el lock es de la tarea actual. Devuelve true si lo
	// tomó ella misma y false si se lo pasó quien lo liberaba.
	Bloquear() bool
	// Desbloquear devuelve la tarea a la que se le pasó el lock, si había alguna esperando.
	Desbloquear() *Tarea
	Ocupado() bool
}

// MutexSpin reintenta cediendo la CPU entre intento e intento. La tarea nunca queda BLOCKED.
type MutexSpin struct {
	mu     sync.Mutex
	tomado bool
	plan   Planificacion
}

func NuevoMutexSpin(plan Planificacion) *MutexSpin {
	return &MutexSpin{plan: plan}
}

func (m *MutexSpin) Bloquear() bool {
	for {
		m.mu.Lock()
		if !m.tomado {
			m.tomado = true
			m.mu.Unlock()
			return true
		}
		m.mu.Unlock()
		m.plan.SuspenderActual()
	}
}

func (m *MutexSpin) Desbloquear() *Tarea {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tomado = false
	return nil
}

func (m *MutexSpin) Ocupado() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tomado
}

// MutexBloqueante encola a las tareas que esperan y le pasa el lock a la primera.
type MutexBloqueante struct {
	mu     sync.Mutex
	tomado bool
	cola   []*Tarea
	plan   Planificacion
}

func NuevoMutexBloqueante(plan Planificacion) *MutexBloqueante {
	return &MutexBloqueante{plan: plan}
}

func (m *MutexBloqueante) Bloquear() bool {
	actual := m.plan.TareaActual()
	m.mu.Lock()
	if !m.tomado {
		m.tomado = true
		m.mu.Unlock()
		return true
	}
	m.cola = append(m.cola, actual)
	m.mu.Unlock()

	m.plan.BloquearActual(MotivoMutex)
	return false
}

func (m *MutexBloqueante) Desbloquear() *Tarea {
	m.mu.Lock()
	if len(m.cola) == 0 {
		m.tomado = false
		m.mu.Unlock()
		return nil
	}
	// El lock sigue tomado, ahora a nombre de la primera de la cola
	siguiente := m.cola[0]
	m.cola = m.cola[1:]
	m.mu.Unlock()

	m.plan.Despertar(siguiente)
	return siguiente
}

func (m *MutexBloqueante) Ocupado() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tomado || len(m.cola) > 0
}

// ---------------------------- Semáforo ----------------------------//

// Semaforo contador. Un valor negativo es la cantidad de tareas esperando.
type Semaforo struct {
	mu    sync.Mutex
	valor int
	cola  []*Tarea
	plan  Planificacion
}

func NuevoSemaforo(plan Planificacion, valor int) *Semaforo {
	return &Semaforo{valor: valor, plan: plan}
}

// Bajar devuelve true si consiguió la unidad sin esperar.
func (s *Semaforo) Bajar() bool {
	actual := s.plan.TareaActual()
	s.mu.Lock()
	s.valor--
	if s.valor >= 0 {
		s.mu.Unlock()
		return true
	}
	s.cola = append(s.cola, actual)
	s.mu.Unlock()

	s.plan.BloquearActual(MotivoSemaforo)
	return false
}

// Subir devuelve la tarea despertada, si había alguna esperando.
func (s *Semaforo) Subir() *Tarea {
	s.mu.Lock()
	s.valor++
	if s.valor > 0 || len(s.cola) == 0 {
		s.mu.Unlock()
		return nil
	}
	siguiente := s.cola[0]
	s.cola = s.cola[1:]
	s.mu.Unlock()

	s.plan.Despertar(siguiente)
	return siguiente
}

func (s *Semaforo) Valor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valor
}

func (s *Semaforo) EnEspera() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cola)
}

// ---------------------------- Condvar ----------------------------//

type Condvar struct {
	mu   sync.Mutex
	cola []*Tarea
	plan Planificacion
}

func NuevaCondvar(plan Planificacion) *Condvar {
	return &Condvar{plan: plan}
}

// Señalar despierta a lo sumo una tarea.
func (c *Condvar) Señalar() *Tarea {
	c.mu.Lock()
	if len(c.cola) == 0 {
		c.mu.Unlock()
		return nil
	}
	siguiente := c.cola[0]
	c.cola = c.cola[1:]
	c.mu.Unlock()

	c.plan.Despertar(siguiente)
	return siguiente
}

// Esperar bloquea a la tarea actual hasta el próximo Señalar. El lock asociado
// lo maneja quien llama.
func (c *Condvar) Esperar() {
	actual := c.plan.TareaActual()
	c.mu.Lock()
	c.cola = append(c.cola, actual)
	c.mu.Unlock()

	c.plan.BloquearActual(MotivoCondvar)
}

func (c *Condvar) EnEspera() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cola)
}
