package utilsKernel

// Planificador es la cola de ready con política stride.
// No es seguro para uso concurrente: se accede con Kernel.mu tomado.
type Planificador struct {
	listos []*Tarea
}

func (p *Planificador) Agregar(t *Tarea) {
	p.listos = append(p.listos, t)
}

// Obtener saca la tarea de menor stride. Ante empates gana la que entró primero.
func (p *Planificador) Obtener() *Tarea {
	if len(p.listos) == 0 {
		return nil
	}
	elegida := 0
	for i := 1; i < len(p.listos); i++ {
		if strideMenor(p.listos[i].stride, p.listos[elegida].stride) {
			elegida = i
		}
	}
	t := p.listos[elegida]
	p.listos = append(p.listos[:elegida], p.listos[elegida+1:]...)
	return t
}
