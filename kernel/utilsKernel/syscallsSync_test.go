package utilsKernel

import (
	"errors"
	"slices"
	"testing"

	"azzaros/utils/config"
)

// programaCruzado arma dos tareas que toman dos mutex en orden inverso.
// La primera cede la CPU entre un lock y el otro para que la segunda llegue a tomar b.
func programaCruzado(k *Kernel, p *Proceso, codigos *[2]int, alDetectar func()) {
	var a, b int
	k.CrearTarea(p, func() int {
		a = k.SyscallMutexCreate(true)
		b = k.SyscallMutexCreate(true)
		k.SyscallMutexLock(a)
		k.SyscallYield()
		codigos[0] = k.SyscallMutexLock(b)
		if codigos[0] == CodigoDeadlock {
			alDetectar()
			k.SyscallMutexUnlock(a)
			return 0
		}
		k.SyscallMutexUnlock(b)
		k.SyscallMutexUnlock(a)
		return 0
	})
	k.CrearTarea(p, func() int {
		k.SyscallMutexLock(b)
		codigos[1] = k.SyscallMutexLock(a)
		k.SyscallMutexUnlock(a)
		k.SyscallMutexUnlock(b)
		return 0
	})
}

func TestDeadlockDetectado(t *testing.T) {
	k := kernelDePrueba(t, func(cfg *config.ConfigKernel) { cfg.DeadlockDetect = true })
	p := k.CrearProceso()

	var codigos [2]int
	var conservado bool
	var necesidad []int
	var ciclo []int
	programaCruzado(k, p, &codigos, func() {
		k.mu.Lock()
		conservado = p.Recursos.Conservado()
		necesidad = slices.Clone(p.Recursos.Necesidad[0])
		ciclo = p.Recursos.GrafoEspera().TareasEnCiclo()
		k.mu.Unlock()
	})

	if err := correr(t, k); err != nil {
		t.Fatal(err)
	}
	if codigos[0] != CodigoDeadlock || codigos[1] != 0 {
		t.Fatalf("códigos = %v, se esperaba [%d 0]", codigos, CodigoDeadlock)
	}
	if !conservado {
		t.Fatal("las matrices no se conservan después del rechazo")
	}
	if !slices.Equal(necesidad, []int{0, 0}) {
		t.Fatalf("el pedido rechazado debería deshacerse, necesidad = %v", necesidad)
	}
	if len(ciclo) != 0 {
		t.Fatalf("después de deshacer el pedido no queda ciclo, llegó %v", ciclo)
	}

	// Al terminar no queda nada asignado ni pedido
	for tid := range p.Recursos.Asignacion {
		for col := range p.Recursos.Asignacion[tid] {
			if p.Recursos.Asignacion[tid][col] != 0 || p.Recursos.Necesidad[tid][col] != 0 {
				t.Errorf("TID %d columna %d: asignación=%d necesidad=%d", tid, col,
					p.Recursos.Asignacion[tid][col], p.Recursos.Necesidad[tid][col])
			}
		}
	}
	if !slices.Equal(p.Recursos.Disponible, []int{1, 1}) {
		t.Fatalf("disponible = %v", p.Recursos.Disponible)
	}
}

func TestDeadlockSinDeteccion(t *testing.T) {
	k := kernelDePrueba(t, nil)
	p := k.CrearProceso()

	var codigos [2]int
	programaCruzado(k, p, &codigos, func() {
		t.Error("sin detección nunca debería devolverse el código de deadlock")
	})

	if err := correr(t, k); !errors.Is(err, ErrTodasBloqueadas) {
		t.Fatalf("se esperaba ErrTodasBloqueadas, llegó %v", err)
	}
	if !p.Recursos.HayDeadlock() {
		t.Fatal("las matrices deberían mostrar el deadlock")
	}
	if ciclo := p.Recursos.GrafoEspera().TareasEnCiclo(); !slices.Equal(ciclo, []int{0, 1}) {
		t.Fatalf("TareasEnCiclo = %v", ciclo)
	}
}

func TestHabilitarDeteccionEnEjecucion(t *testing.T) {
	k := kernelDePrueba(t, nil)
	p := k.CrearProceso()

	var resultados []int
	var habilitada bool
	k.CrearTarea(p, func() int {
		resultados = append(resultados, k.SyscallEnableDeadlockDetect(1))
		habilitada = p.DetectaDeadlock()
		for _, valor := range []int{2, -1, 0} {
			k.SyscallEnableDeadlockDetect(1)
			resultados = append(resultados, k.SyscallEnableDeadlockDetect(valor))
			if p.DetectaDeadlock() {
				t.Errorf("con %d la detección debería quedar apagada", valor)
			}
		}
		return 0
	})

	if err := correr(t, k); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(resultados, []int{0, 0, 0, 0}) {
		t.Fatalf("resultados = %v", resultados)
	}
	if !habilitada || p.DetectaDeadlock() {
		t.Fatalf("habilitada=%t al final=%t", habilitada, p.DetectaDeadlock())
	}
}

func TestProductorConsumidor(t *testing.T) {
	k := kernelDePrueba(t, nil)
	p := k.CrearProceso()

	const items = 20
	var vacios, mutex, hayDatos int
	var buffer []int
	suma := 0

	k.CrearTarea(p, func() int {
		vacios = k.SyscallSemaphoreCreate(4)
		mutex = k.SyscallMutexCreate(true)
		hayDatos = k.SyscallCondvarCreate()
		for i := range items {
			k.SyscallSemaphoreDown(vacios)
			k.SyscallMutexLock(mutex)
			if len(buffer) >= 4 {
				t.Errorf("buffer con %d elementos", len(buffer))
			}
			buffer = append(buffer, i)
			k.SyscallCondvarSignal(hayDatos)
			k.SyscallMutexUnlock(mutex)
		}
		return 0
	})
	k.CrearTarea(p, func() int {
		for range items {
			k.SyscallMutexLock(mutex)
			for len(buffer) == 0 {
				k.SyscallCondvarWait(hayDatos, mutex)
			}
			suma += buffer[0]
			buffer = buffer[1:]
			k.SyscallMutexUnlock(mutex)
			k.SyscallSemaphoreUp(vacios)
		}
		return 0
	})

	if err := correr(t, k); err != nil {
		t.Fatal(err)
	}
	if suma != items*(items-1)/2 {
		t.Fatalf("suma = %d", suma)
	}
	if !p.Recursos.Conservado() {
		t.Fatalf("matrices no conservadas: %+v", p.Recursos)
	}
	col, _ := p.Recursos.Columna(Recurso{Tipo: RecursoMutex, ID: mutex})
	if p.Recursos.Disponible[col] != 1 {
		t.Fatalf("el mutex quedó tomado: disponible = %d", p.Recursos.Disponible[col])
	}
}

func TestMutexSpinExclusion(t *testing.T) {
	k := kernelDePrueba(t, nil)
	p := k.CrearProceso()

	var mutex, contador int
	dentro := false
	for i := range 3 {
		k.CrearTarea(p, func() int {
			if i == 0 {
				mutex = k.SyscallMutexCreate(false)
			}
			for range 5 {
				k.SyscallMutexLock(mutex)
				if dentro {
					t.Error("dos tareas dentro de la sección crítica")
				}
				dentro = true
				leido := contador
				k.SyscallYield()
				contador = leido + 1
				dentro = false
				k.SyscallMutexUnlock(mutex)
			}
			return 0
		})
	}

	if err := correr(t, k); err != nil {
		t.Fatal(err)
	}
	if contador != 15 {
		t.Fatalf("contador = %d, se esperaba 15", contador)
	}
	for _, tarea := range p.Tareas() {
		if tarea.MetricasConteo[EstadoBlocked.String()] != 0 {
			t.Errorf("TID %d se bloqueó con un spin lock", tarea.TID)
		}
	}
	if !p.Recursos.Conservado() {
		t.Fatal("matrices no conservadas")
	}
}

func TestMutexUnlockAjeno(t *testing.T) {
	k := kernelDePrueba(t, nil)
	p := k.CrearProceso()

	var mutex int
	var codigo int
	k.CrearTarea(p, func() int {
		mutex = k.SyscallMutexCreate(true)
		k.SyscallMutexLock(mutex)
		k.SyscallYield()
		k.SyscallMutexUnlock(mutex)
		return 0
	})
	k.CrearTarea(p, func() int {
		codigo = k.SyscallMutexUnlock(mutex)
		return 0
	})

	if err := correr(t, k); err != nil {
		t.Fatal(err)
	}
	if codigo != 0 {
		t.Fatalf("unlock ajeno devolvió %d", codigo)
	}
	if !slices.Equal(p.Recursos.Disponible, []int{1}) || !p.Recursos.Conservado() {
		t.Fatalf("disponible = %v", p.Recursos.Disponible)
	}
}

func TestSemaforoUpSinUnidad(t *testing.T) {
	k := kernelDePrueba(t, nil)
	p := k.CrearProceso()

	var sem int
	var resultados []int
	k.CrearTarea(p, func() int {
		resultados = append(resultados, k.SyscallSemaphoreCreate(-1))
		sem = k.SyscallSemaphoreCreate(0)
		resultados = append(resultados, sem)
		k.SyscallSemaphoreDown(sem) // espera el up de la otra tarea
		resultados = append(resultados, k.SyscallSemaphoreUp(sem))
		return 0
	})
	k.CrearTarea(p, func() int {
		k.mu.Lock()
		err := p.QuitarSemaforo(sem)
		k.mu.Unlock()
		if !errors.Is(err, ErrRecursoEnUso) {
			t.Errorf("quitar un semáforo con tareas esperando: %v", err)
		}
		k.SyscallSemaphoreUp(sem)
		return 0
	})

	if err := correr(t, k); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(resultados, []int{-1, 0, 0}) {
		t.Fatalf("resultados = %v", resultados)
	}

	// La unidad creada por el up pasó por la tarea 0 y volvió
	col, _ := p.Recursos.Columna(Recurso{Tipo: RecursoSemaforo, ID: sem})
	if p.Recursos.Total[col] != 1 || p.Recursos.Disponible[col] != 1 || p.Recursos.Asignacion[0][col] != 0 {
		t.Fatalf("total=%d disponible=%d asignada=%d",
			p.Recursos.Total[col], p.Recursos.Disponible[col], p.Recursos.Asignacion[0][col])
	}
	if s := p.semaforo(sem); s.Valor() != 1 || s.EnEspera() != 0 {
		t.Fatalf("valor=%d en espera=%d", s.Valor(), s.EnEspera())
	}
}

func TestSignalSinEsperando(t *testing.T) {
	k := kernelDePrueba(t, nil)
	p := k.CrearProceso()

	var orden []string
	var condvar, mutex int
	k.CrearTarea(p, func() int {
		condvar = k.SyscallCondvarCreate()
		mutex = k.SyscallMutexCreate(true)
		k.SyscallCondvarSignal(condvar) // no queda registrada
		k.SyscallMutexLock(mutex)
		orden = append(orden, "espera")
		k.SyscallCondvarWait(condvar, mutex)
		orden = append(orden, "despierta")
		k.SyscallMutexUnlock(mutex)
		return 0
	})
	k.CrearTarea(p, func() int {
		k.SyscallMutexLock(mutex)
		orden = append(orden, "señal")
		k.SyscallCondvarSignal(condvar)
		k.SyscallMutexUnlock(mutex)
		return 0
	})

	if err := correr(t, k); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(orden, []string{"espera", "señal", "despierta"}) {
		t.Fatalf("orden = %v", orden)
	}
	if tarea := p.Tareas()[0]; tarea.MetricasConteo[EstadoBlocked.String()] != 1 {
		t.Fatalf("la tarea 0 se bloqueó %d veces", tarea.MetricasConteo[EstadoBlocked.String()])
	}
}

func TestReutilizarSlots(t *testing.T) {
	k := kernelDePrueba(t, nil)
	p := k.CrearProceso()

	var ids []int
	var errs []error
	k.CrearTarea(p, func() int {
		m0 := k.SyscallMutexCreate(false)
		m1 := k.SyscallMutexCreate(true)
		s0 := k.SyscallSemaphoreCreate(1)
		c0 := k.SyscallCondvarCreate()
		k.SyscallMutexLock(m1)

		k.mu.Lock()
		errs = append(errs,
			p.QuitarMutex(m1),
			p.QuitarMutex(m0),
			p.QuitarSemaforo(s0),
			p.QuitarCondvar(c0),
		)
		k.mu.Unlock()

		ids = append(ids,
			k.SyscallMutexCreate(true),
			k.SyscallSemaphoreCreate(3),
			k.SyscallCondvarCreate(),
			k.SyscallMutexCreate(false),
		)
		k.SyscallMutexUnlock(m1)
		return 0
	})

	if err := correr(t, k); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(errs[0], ErrRecursoEnUso) || errs[1] != nil || errs[2] != nil || errs[3] != nil {
		t.Fatalf("errores = %v", errs)
	}
	if !slices.Equal(ids, []int{0, 0, 0, 2}) {
		t.Fatalf("ids = %v", ids)
	}

	// El semáforo reutilizado arranca con su cuenta nueva
	col, _ := p.Recursos.Columna(Recurso{Tipo: RecursoSemaforo, ID: 0})
	if p.Recursos.Total[col] != 3 || p.Recursos.Disponible[col] != 3 {
		t.Fatalf("semaforo 0: total=%d disponible=%d", p.Recursos.Total[col], p.Recursos.Disponible[col])
	}
	if len(p.Recursos.Orden) != 4 {
		t.Fatalf("columnas = %v", p.Recursos.Orden)
	}
}

func TestCondvarWaitSinMutex(t *testing.T) {
	k := kernelDePrueba(t, nil)
	p := k.CrearProceso()

	var codigo int
	k.CrearTarea(p, func() int {
		condvar := k.SyscallCondvarCreate()
		mutex := k.SyscallMutexCreate(true)
		codigo = k.SyscallCondvarWait(condvar, mutex)
		if p.condvar(condvar).EnEspera() != 0 {
			t.Error("la tarea no debería haber quedado esperando en la condvar")
		}
		return 0
	})

	if err := correr(t, k); err != nil {
		t.Fatal(err)
	}
	if codigo != -1 {
		t.Fatalf("CondvarWait sin el mutex devolvió %d", codigo)
	}
	if !slices.Equal(p.Recursos.Disponible, []int{1}) || p.Recursos.Asignacion[0][0] != 0 {
		t.Fatalf("el mutex no debería haberse tomado: disponible=%v asignación=%v",
			p.Recursos.Disponible, p.Recursos.Asignacion)
	}
	if p.Tareas()[0].MetricasConteo[EstadoBlocked.String()] != 0 {
		t.Fatal("la tarea no debería haberse bloqueado")
	}
}
