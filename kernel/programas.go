package main

import (
	"azzaros/kernel/utilsKernel"
	"azzaros/utils/logueador"
	"azzaros/utils/structs"
)

// Cada programa crea su proceso y sus tareas antes de que arranque el planificador.
var programas = map[string]func(k *utilsKernel.Kernel){
	"stride":               programaStride,
	"filosofos":            programaFilosofos,
	"productor-consumidor": programaProductorConsumidor,
	"deadlock":             programaDeadlock,
	"memoria":              programaMemoria,
}

// Cinco tareas con prioridades 5 a 9 que sólo ceden la CPU. Las de mayor prioridad
// terminan antes.
func programaStride(k *utilsKernel.Kernel) {
	p := k.CrearProceso()
	for prioridad := int64(5); prioridad <= 9; prioridad++ {
		k.CrearTarea(p, func() int {
			k.SyscallSetPriority(prioridad)
			for range 200 {
				k.SyscallYield()
			}
			logueador.Info("Prioridad %d terminó", prioridad)
			return 0
		})
	}
}

func programaFilosofos(k *utilsKernel.Kernel) {
	const filosofos = 5
	p := k.CrearProceso()

	tenedores := make([]int, filosofos)
	k.CrearTarea(p, func() int {
		for i := range tenedores {
			tenedores[i] = k.SyscallMutexCreate(true)
		}
		for i := range filosofos {
			izquierdo, derecho := tenedores[i], tenedores[(i+1)%filosofos]
			if i == filosofos-1 {
				// El último toma los tenedores al revés para romper la espera circular
				izquierdo, derecho = derecho, izquierdo
			}
			k.CrearTarea(p, func() int {
				for range 3 {
					k.SyscallMutexLock(izquierdo)
					k.SyscallMutexLock(derecho)
					k.SyscallSleep(5)
					k.SyscallMutexUnlock(derecho)
					k.SyscallMutexUnlock(izquierdo)
					k.SyscallSleep(5)
				}
				return 0
			})
		}
		return 0
	})
}

// El productor respeta la capacidad con un semáforo; el consumidor espera datos en una condvar.
func programaProductorConsumidor(k *utilsKernel.Kernel) {
	const capacidad, items = 4, 20
	p := k.CrearProceso()

	k.CrearTarea(p, func() int {
		lugares := k.SyscallSemaphoreCreate(capacidad)
		mutex := k.SyscallMutexCreate(true)
		hayDatos := k.SyscallCondvarCreate()

		var buffer []int
		k.CrearTarea(p, func() int {
			for i := range items {
				k.SyscallSemaphoreDown(lugares)
				k.SyscallMutexLock(mutex)
				buffer = append(buffer, i)
				k.SyscallCondvarSignal(hayDatos)
				k.SyscallMutexUnlock(mutex)
			}
			return 0
		})
		k.CrearTarea(p, func() int {
			suma := 0
			for range items {
				k.SyscallMutexLock(mutex)
				for len(buffer) == 0 {
					k.SyscallCondvarWait(hayDatos, mutex)
				}
				suma += buffer[0]
				buffer = buffer[1:]
				k.SyscallMutexUnlock(mutex)
				k.SyscallSemaphoreUp(lugares)
			}
			logueador.Info("El consumidor sumó %d", suma)
			return 0
		})
		return 0
	})
}

// Dos tareas toman dos mutex en orden inverso. Con la detección prendida la
// segunda en pedir recibe el código de deadlock en vez de bloquearse.
func programaDeadlock(k *utilsKernel.Kernel) {
	p := k.CrearProceso()

	k.CrearTarea(p, func() int {
		k.SyscallEnableDeadlockDetect(1)
		a := k.SyscallMutexCreate(true)
		b := k.SyscallMutexCreate(true)

		tomarEnOrden := func(primero, segundo int) utilsKernel.Programa {
			return func() int {
				k.SyscallMutexLock(primero)
				k.SyscallSleep(10)
				if codigo := k.SyscallMutexLock(segundo); codigo == utilsKernel.CodigoDeadlock {
					logueador.Warn("TID %d: deadlock evitado, se suelta el mutex %d", k.SyscallGetTid(), primero)
					k.SyscallMutexUnlock(primero)
					return 1
				}
				k.SyscallMutexUnlock(segundo)
				k.SyscallMutexUnlock(primero)
				return 0
			}
		}
		k.CrearTarea(p, tomarEnOrden(a, b))
		k.CrearTarea(p, tomarEnOrden(b, a))
		return 0
	})
}

func programaMemoria(k *utilsKernel.Kernel) {
	p := k.CrearProceso()
	const base = 0x10000

	k.CrearTarea(p, func() int {
		if k.SyscallMmap(base, 2*4096, 0x3) != 0 {
			return -1
		}
		// TaskInfo cruzando el límite de página
		direccion := uint64(base + 4096 - 100)
		k.SyscallGetTime(direccion, 0)
		k.SyscallTaskInfo(direccion)
		viejo := k.SyscallSbrk(4096)
		logueador.Info("brk anterior %#x, TaskInfo en %#x (%d bytes)", viejo, direccion, structs.TamanioTaskInfo)
		k.SyscallSbrk(-4096)
		return k.SyscallMunmap(base, 2*4096)
	})
}
