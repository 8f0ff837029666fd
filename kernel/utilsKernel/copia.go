package utilsKernel

import (
	"fmt"
)

// copiarAUsuario escribe datos a partir de va en el espacio del token.
// Cada byte se traduce por separado porque páginas contiguas pueden estar en
// frames que no lo son. Si algún byte no está mapeado no se escribe ninguno.
func (k *Kernel) copiarAUsuario(token uint64, va uint64, datos []byte) error {
	fisicas := make([]uint64, len(datos))
	for i := range datos {
		pa, err := k.mmu.Traducir(token, va+uint64(i))
		if err != nil {
			return fmt.Errorf("copia al usuario en %#x: %w", va+uint64(i), err)
		}
		fisicas[i] = pa
	}

	for i, pa := range fisicas {
		if err := k.memoria.EscribirFisica(pa, datos[i]); err != nil {
			return err
		}
	}
	return nil
}
