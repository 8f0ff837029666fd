package utilsKernel

import (
	"fmt"
	"io"
	"strings"

	"github.com/aclements/go-moremath/graph/graphalg"
	"github.com/aclements/go-moremath/graph/graphout"
)

// GrafoEspera tiene un nodo por TID y una arista t -> u cuando t pide un
// recurso agotado que u tiene asignado. Satisface graph.Graph.
type GrafoEspera struct {
	aristas [][]int
	motivos [][]Recurso // motivos[t][i] es el recurso de la arista aristas[t][i]
}

// GrafoEspera arma el grafo con el estado actual de las matrices.
func (r *Recursos) GrafoEspera() *GrafoEspera {
	g := &GrafoEspera{
		aristas: make([][]int, len(r.Necesidad)),
		motivos: make([][]Recurso, len(r.Necesidad)),
	}
	for t := range r.Necesidad {
		for col, pedido := range r.Necesidad[t] {
			if pedido == 0 || r.Disponible[col] > 0 {
				continue
			}
			for u := range r.Asignacion {
				if u != t && r.Asignacion[u][col] > 0 {
					g.aristas[t] = append(g.aristas[t], u)
					g.motivos[t] = append(g.motivos[t], r.Orden[col])
				}
			}
		}
	}
	return g
}

func (g *GrafoEspera) NumNodes() int {
	return len(g.aristas)
}

func (g *GrafoEspera) Out(i int) []int {
	return g.aristas[i]
}

// TareasEnCiclo devuelve, en orden, los TID que forman parte de algún ciclo de espera.
func (g *GrafoEspera) TareasEnCiclo() []int {
	scc := graphalg.SCC(g, graphalg.SCCSubnodeComponent)
	marcas := graphalg.NewNodeMarks()
	for cid := 0; cid < scc.NumNodes(); cid++ {
		nodos := scc.Subnodes(cid)
		if len(nodos) <= 1 {
			continue
		}
		for _, n := range nodos {
			marcas.Mark(n)
		}
	}

	var tids []int
	for n := marcas.Next(-1); n >= 0; n = marcas.Next(n) {
		tids = append(tids, n)
	}
	return tids
}

// EscribirDot vuelca el grafo en formato graphviz.
func (g *GrafoEspera) EscribirDot(w io.Writer) {
	etiqueta := func(n int) string {
		return fmt.Sprintf("TID %d", n)
	}
	atributosArista := func(n, arista int) []graphout.DotAttr {
		return []graphout.DotAttr{
			{Name: "label", Val: strings.ReplaceAll(g.motivos[n][arista].String(), " ", "_")},
		}
	}
	graphout.Dot{Label: etiqueta, EdgeAttrs: atributosArista}.Fprint(w, g)
}
