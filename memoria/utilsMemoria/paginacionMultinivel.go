package utilsMemoria

import (
	"fmt"

	"azzaros/utils/structs"
)

type Entrada struct {
	NumeroDeFrame int
	Permisos      structs.Permisos
	Valida        bool
}

func entradaVacia() Entrada {
	return Entrada{NumeroDeFrame: -1} // -1 representa que no esta asignado
}

// Tabla es un nodo de la tabla jerárquica. Los niveles intermedios usan Punteros y la hoja usa Entradas.
type Tabla struct {
	Punteros []*Tabla
	Entradas []Entrada
}

func (m *Memoria) nuevaTabla(nivelesRestantes int) *Tabla {
	tabla := &Tabla{}
	if nivelesRestantes == 1 {
		tabla.Entradas = make([]Entrada, m.Config.EntriesPerPage)
		for i := range tabla.Entradas {
			tabla.Entradas[i] = entradaVacia()
		}
	} else {
		// Las subtablas se crean recién cuando se mapea algo debajo
		tabla.Punteros = make([]*Tabla, m.Config.EntriesPerPage)
	}
	return tabla
}

func (m *Memoria) paginasDireccionables() uint64 {
	total := uint64(1)
	for range m.Config.NumberOfLevels {
		total *= uint64(m.Config.EntriesPerPage)
	}
	return total
}

// indicesDe parte el número de página en un índice por nivel, del más alto al más bajo.
func (m *Memoria) indicesDe(vpn uint64) ([]int, error) {
	if vpn >= m.paginasDireccionables() {
		return nil, fmt.Errorf("página %d: %w", vpn, ErrFueraDeRango)
	}
	entradas := uint64(m.Config.EntriesPerPage)
	indices := make([]int, m.Config.NumberOfLevels)
	for nivel := m.Config.NumberOfLevels - 1; nivel >= 0; nivel-- {
		indices[nivel] = int(vpn % entradas)
		vpn /= entradas
	}
	return indices, nil
}

// buscarEntrada recorre la tabla hasta la hoja. Con crear=false devuelve nil si falta un nivel.
func (m *Memoria) buscarEntrada(raiz *Tabla, vpn uint64, crear bool) (*Entrada, error) {
	indices, err := m.indicesDe(vpn)
	if err != nil {
		return nil, err
	}

	tabla := raiz
	for nivel := 0; nivel < len(indices)-1; nivel++ {
		siguiente := tabla.Punteros[indices[nivel]]
		if siguiente == nil {
			if !crear {
				return nil, nil
			}
			siguiente = m.nuevaTabla(len(indices) - nivel - 1)
			tabla.Punteros[indices[nivel]] = siguiente
		}
		tabla = siguiente
	}
	return &tabla.Entradas[indices[len(indices)-1]], nil
}

func (m *Memoria) paginaMapeada(raiz *Tabla, vpn uint64) bool {
	entrada, err := m.buscarEntrada(raiz, vpn, false)
	return err == nil && entrada != nil && entrada.Valida
}

// recorrerHojas visita cada entrada válida con su número de página.
func recorrerHojas(tabla *Tabla, base uint64, entradasPorTabla uint64, visitar func(uint64, *Entrada)) {
	if tabla == nil {
		return
	}
	if tabla.Entradas != nil {
		for i := range tabla.Entradas {
			if tabla.Entradas[i].Valida {
				visitar(base*entradasPorTabla+uint64(i), &tabla.Entradas[i])
			}
		}
		return
	}
	for i, sub := range tabla.Punteros {
		recorrerHojas(sub, base*entradasPorTabla+uint64(i), entradasPorTabla, visitar)
	}
}
