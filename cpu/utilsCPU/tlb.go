package utilsCPU

type EntradaTLB struct {
	Token                uint64
	NumeroPagina         uint64
	NumeroFrame          int
	BitPresencia         bool   // Indica si la entrada es válida
	InstanteDeCarga      uint64 // Para FIFO
	InstanteDeReferencia uint64 // Para LRU
}

// Algoritmos => FIFO o LRU
type TLB struct {
	Entradas    []EntradaTLB
	MaxEntradas int
	Algoritmo   string

	reloj uint64 // contador lógico, avanza en cada acceso
}

func NuevaTLB(maxEntradas int, algoritmo string) *TLB {
	return &TLB{
		Entradas:    make([]EntradaTLB, 0, maxEntradas),
		MaxEntradas: maxEntradas,
		Algoritmo:   algoritmo,
	}
}

func (tlb *TLB) Habilitada() bool {
	return tlb.MaxEntradas > 0
}

// Hit devuelve el frame si la página del token está en la TLB.
func (tlb *TLB) Hit(token uint64, pagina uint64) (int, bool) {
	tlb.reloj++
	for i := range tlb.Entradas {
		entrada := &tlb.Entradas[i]
		if entrada.BitPresencia && entrada.Token == token && entrada.NumeroPagina == pagina {
			entrada.InstanteDeReferencia = tlb.reloj
			return entrada.NumeroFrame, true
		}
	}
	return -1, false
}

// FIFO => victima => la que más tiempo lleva en el TLB
// LRU => victima => la que menos recientemente fue referenciada
func (tlb *TLB) IndiceDeEntradaVictima() int {
	victima := 0
	for i := 1; i < len(tlb.Entradas); i++ {
		if tlb.Algoritmo == "FIFO" {
			if tlb.Entradas[i].InstanteDeCarga < tlb.Entradas[victima].InstanteDeCarga {
				victima = i
			}
		} else if tlb.Entradas[i].InstanteDeReferencia < tlb.Entradas[victima].InstanteDeReferencia {
			victima = i
		}
	}
	return victima
}

func (tlb *TLB) Agregar(token uint64, pagina uint64, frame int) {
	if !tlb.Habilitada() {
		return
	}
	tlb.reloj++
	nuevaEntrada := EntradaTLB{
		Token:                token,
		NumeroPagina:         pagina,
		NumeroFrame:          frame,
		BitPresencia:         true,
		InstanteDeCarga:      tlb.reloj,
		InstanteDeReferencia: tlb.reloj,
	}

	// Primero se reutilizan las entradas invalidadas
	for i := range tlb.Entradas {
		if !tlb.Entradas[i].BitPresencia {
			tlb.Entradas[i] = nuevaEntrada
			return
		}
	}

	if len(tlb.Entradas) == tlb.MaxEntradas { // si la cantidad de entradas es la maxima => hay que reemplazar
		tlb.Entradas[tlb.IndiceDeEntradaVictima()] = nuevaEntrada
		return
	}
	tlb.Entradas = append(tlb.Entradas, nuevaEntrada)
}

// InvalidarToken baja todas las entradas de un espacio de direcciones.
func (tlb *TLB) InvalidarToken(token uint64) {
	for i := range tlb.Entradas {
		if tlb.Entradas[i].Token == token {
			tlb.Entradas[i].BitPresencia = false
		}
	}
}
