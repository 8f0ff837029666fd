package utilsKernel

import "time"

// Reloj es el temporizador del sistema: hora actual y despertadores a tiempo absoluto.
type Reloj interface {
	AhoraUs() uint64
	// DespertarEn ejecuta f cuando el reloj llega a expiraMs. f corre en otra goroutine.
	DespertarEn(expiraMs uint64, f func())
}

type RelojSistema struct {
	inicio time.Time
}

func NuevoRelojSistema() *RelojSistema {
	return &RelojSistema{inicio: time.Now()}
}

func (r *RelojSistema) AhoraUs() uint64 {
	return uint64(time.Since(r.inicio).Microseconds())
}

func (r *RelojSistema) DespertarEn(expiraMs uint64, f func()) {
	espera := time.Duration(expiraMs)*time.Millisecond - time.Since(r.inicio)
	if espera < 0 {
		espera = 0
	}
	time.AfterFunc(espera, f)
}
