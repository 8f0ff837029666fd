package utilsCPU

import (
	"errors"
	"testing"

	"azzaros/memoria/utilsMemoria"
	"azzaros/utils/config"
	"azzaros/utils/structs"
)

func TestTLBReemplazo(t *testing.T) {
	casos := []struct {
		algoritmo  string
		sobrevive  uint64
		desalojada uint64
	}{
		{algoritmo: "FIFO", sobrevive: 1, desalojada: 0},
		{algoritmo: "LRU", sobrevive: 0, desalojada: 1},
	}

	for _, c := range casos {
		t.Run(c.algoritmo, func(t *testing.T) {
			tlb := NuevaTLB(2, c.algoritmo)
			tlb.Agregar(1, 0, 10)
			tlb.Agregar(1, 1, 11)
			if _, hit := tlb.Hit(1, 0); !hit {
				t.Fatal("la página 0 debería estar en la TLB")
			}
			tlb.Agregar(1, 2, 12)

			if _, hit := tlb.Hit(1, c.desalojada); hit {
				t.Errorf("la página %d debería haber sido desalojada", c.desalojada)
			}
			if _, hit := tlb.Hit(1, c.sobrevive); !hit {
				t.Errorf("la página %d debería seguir en la TLB", c.sobrevive)
			}
			if frame, hit := tlb.Hit(1, 2); !hit || frame != 12 {
				t.Errorf("Hit(1, 2) = %d, %t", frame, hit)
			}
		})
	}
}

func TestTLBInvalidarToken(t *testing.T) {
	tlb := NuevaTLB(2, "LRU")
	tlb.Agregar(1, 0, 10)
	tlb.Agregar(2, 0, 20)

	tlb.InvalidarToken(1)
	if _, hit := tlb.Hit(1, 0); hit {
		t.Fatal("las entradas del token 1 deberían estar invalidadas")
	}
	if frame, hit := tlb.Hit(2, 0); !hit || frame != 20 {
		t.Fatal("las entradas de otros tokens no se tocan")
	}

	tlb.Agregar(1, 5, 15)
	if len(tlb.Entradas) != 2 {
		t.Fatalf("se debería reutilizar la entrada invalidada, hay %d", len(tlb.Entradas))
	}
}

func TestTLBDeshabilitada(t *testing.T) {
	tlb := NuevaTLB(0, "FIFO")
	tlb.Agregar(1, 0, 10)
	if _, hit := tlb.Hit(1, 0); hit {
		t.Fatal("una TLB sin entradas nunca acierta")
	}
}

func TestMMUTraducirEInvalidar(t *testing.T) {
	cfgMemoria := config.PorDefectoMemoria()
	cfgMemoria.MemorySize = 16 * cfgMemoria.PageSize
	memoria := utilsMemoria.NuevaMemoria(cfgMemoria)
	mmu := NuevaMMU(config.PorDefectoCPU(), memoria)

	espacio := memoria.NuevoEspacio(1)
	rw := structs.PermisoR | structs.PermisoW | structs.PermisoU
	if err := espacio.InsertarArea(0x10000, 0x11000, rw); err != nil {
		t.Fatal(err)
	}

	esperada, err := espacio.Traducir(0x10abc)
	if err != nil {
		t.Fatal(err)
	}
	for range 2 { // miss y después hit
		pa, err := mmu.Traducir(espacio.Token, 0x10abc)
		if err != nil || pa != esperada {
			t.Fatalf("Traducir = %#x, %v; se esperaba %#x", pa, err, esperada)
		}
	}

	if err := espacio.QuitarArea(0x10000, 0x11000); err != nil {
		t.Fatal(err)
	}
	if _, err := mmu.Traducir(espacio.Token, 0x10abc); err != nil {
		t.Fatal("sin invalidar, la TLB todavía tiene la traducción vieja")
	}
	mmu.Invalidar(espacio.Token)
	if _, err := mmu.Traducir(espacio.Token, 0x10abc); !errors.Is(err, utilsMemoria.ErrNoMapeado) {
		t.Fatalf("se esperaba ErrNoMapeado, llegó %v", err)
	}
}
