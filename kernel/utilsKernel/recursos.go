package utilsKernel

import (
	"fmt"
	"maps"
	"slices"
)

type TipoRecurso int

const (
	RecursoSemaforo TipoRecurso = iota
	RecursoMutex
)

// Recurso identifica un semáforo o un mutex dentro de un proceso.
type Recurso struct {
	Tipo TipoRecurso
	ID   int
}

func (r Recurso) String() string {
	if r.Tipo == RecursoMutex {
		return fmt.Sprintf("mutex %d", r.ID)
	}
	return fmt.Sprintf("semaforo %d", r.ID)
}

// Recursos son las matrices del algoritmo del banquero de un proceso.
// Filas: TID. Columnas: una por recurso, asignadas en orden de creación.
// No es seguro para uso concurrente: se accede con Kernel.mu tomado.
type Recursos struct {
	columnas map[Recurso]int
	Orden    []Recurso `json:"recursos"`

	Disponible []int   `json:"disponible"`
	Total      []int   `json:"total"`
	Asignacion [][]int `json:"asignacion"`
	Necesidad  [][]int `json:"necesidad"`
	Maximo     [][]int `json:"maximo"`

	maximoColumna []int
}

func NuevosRecursos() *Recursos {
	return &Recursos{columnas: make(map[Recurso]int)}
}

// AgregarTarea crea la fila del TID si todavía no existe.
func (r *Recursos) AgregarTarea(tid int) {
	for len(r.Asignacion) <= tid {
		columnas := len(r.Orden)
		r.Asignacion = append(r.Asignacion, make([]int, columnas))
		r.Necesidad = append(r.Necesidad, make([]int, columnas))
		r.Maximo = append(r.Maximo, slices.Clone(r.maximoColumna))
	}
}

// Inicializar deja la columna del recurso con `unidades` disponibles y nada asignado ni pedido.
// Si el recurso ya tenía columna (slot reutilizado) se reutiliza.
func (r *Recursos) Inicializar(rec Recurso, unidades int, maximo int) int {
	col, existe := r.columnas[rec]
	if !existe {
		col = len(r.Orden)
		r.columnas[rec] = col
		r.Orden = append(r.Orden, rec)
		r.Disponible = append(r.Disponible, 0)
		r.Total = append(r.Total, 0)
		r.maximoColumna = append(r.maximoColumna, 0)
		for tid := range r.Asignacion {
			r.Asignacion[tid] = append(r.Asignacion[tid], 0)
			r.Necesidad[tid] = append(r.Necesidad[tid], 0)
			r.Maximo[tid] = append(r.Maximo[tid], 0)
		}
	}

	r.Disponible[col] = unidades
	r.Total[col] = unidades
	r.maximoColumna[col] = maximo
	for tid := range r.Asignacion {
		r.Asignacion[tid][col] = 0
		r.Necesidad[tid][col] = 0
		r.Maximo[tid][col] = maximo
	}
	return col
}

// Copia devuelve matrices independientes de las originales.
func (r *Recursos) Copia() *Recursos {
	copiarFilas := func(m [][]int) [][]int {
		filas := make([][]int, len(m))
		for i := range m {
			filas[i] = slices.Clone(m[i])
		}
		return filas
	}
	return &Recursos{
		columnas:      maps.Clone(r.columnas),
		Orden:         slices.Clone(r.Orden),
		Disponible:    slices.Clone(r.Disponible),
		Total:         slices.Clone(r.Total),
		Asignacion:    copiarFilas(r.Asignacion),
		Necesidad:     copiarFilas(r.Necesidad),
		Maximo:        copiarFilas(r.Maximo),
		maximoColumna: slices.Clone(r.maximoColumna),
	}
}

func (r *Recursos) Columna(rec Recurso) (int, bool) {
	col, ok := r.columnas[rec]
	return col, ok
}

func (r *Recursos) columna(rec Recurso) int {
	col, ok := r.columnas[rec]
	if !ok {
		panic(fmt.Sprintf("%s sin columna en las matrices", rec))
	}
	return col
}

// Solicitar registra que tid pide una unidad de rec.
func (r *Recursos) Solicitar(tid int, rec Recurso) {
	r.Necesidad[tid][r.columna(rec)]++
}

// Abandonar deshace un Solicitar que no va a concretarse.
func (r *Recursos) Abandonar(tid int, rec Recurso) {
	col := r.columna(rec)
	if r.Necesidad[tid][col] > 0 {
		r.Necesidad[tid][col]--
	}
}

// Asignar concreta un pedido: la unidad pasa de disponible a asignada.
func (r *Recursos) Asignar(tid int, rec Recurso) {
	col := r.columna(rec)
	if r.Necesidad[tid][col] > 0 {
		r.Necesidad[tid][col]--
	}
	r.Asignacion[tid][col]++
	r.Disponible[col]--
}

// Liberar devuelve una unidad que tid tenía asignada.
func (r *Recursos) Liberar(tid int, rec Recurso) error {
	col := r.columna(rec)
	if r.Asignacion[tid][col] == 0 {
		return fmt.Errorf("TID %d sobre %s: %w", tid, rec, ErrNoAsignado)
	}
	r.Asignacion[tid][col]--
	r.Disponible[col]++
	return nil
}

// AgregarUnidad suma una unidad nueva al recurso (un up de quien no tenía nada asignado).
func (r *Recursos) AgregarUnidad(rec Recurso) {
	col := r.columna(rec)
	r.Total[col]++
	r.Disponible[col]++
}

func (r *Recursos) Asignadas(tid int, rec Recurso) int {
	return r.Asignacion[tid][r.columna(rec)]
}

// HayDeadlock corre el chequeo sobre el estado actual de las matrices.
func (r *Recursos) HayDeadlock() bool {
	return DetectarDeadlock(r.Disponible, r.Necesidad, r.Asignacion)
}

// Conservado verifica disponible + Σ asignación == total en cada columna.
func (r *Recursos) Conservado() bool {
	for col := range r.Orden {
		suma := r.Disponible[col]
		for tid := range r.Asignacion {
			suma += r.Asignacion[tid][col]
		}
		if suma != r.Total[col] {
			return false
		}
	}
	return true
}

// DetectarDeadlock devuelve true si alguna tarea no puede terminar ni aunque
// todas las demás que sí pueden liberen lo que tienen.
func DetectarDeadlock(disponible []int, necesidad, asignacion [][]int) bool {
	_, seguro := OrdenSeguro(disponible, necesidad, asignacion)
	return !seguro
}

// OrdenSeguro simula el banquero y devuelve las tareas en el orden en que terminan.
// El segundo valor es false si quedó alguna sin poder terminar.
func OrdenSeguro(disponible []int, necesidad, asignacion [][]int) ([]int, bool) {
	trabajo := slices.Clone(disponible)
	terminada := make([]bool, len(necesidad))
	orden := make([]int, 0, len(necesidad))

	for progreso := true; progreso; {
		progreso = false
		for tid := range necesidad {
			if terminada[tid] || !alcanza(necesidad[tid], trabajo) {
				continue
			}
			terminada[tid] = true
			orden = append(orden, tid)
			for col := range trabajo {
				trabajo[col] += asignacion[tid][col]
			}
			progreso = true
		}
	}

	return orden, len(orden) == len(necesidad)
}

func alcanza(necesidad, disponible []int) bool {
	for col, n := range necesidad {
		if n > disponible[col] {
			return false
		}
	}
	return true
}
