package utilsMemoria

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"azzaros/utils"
	"azzaros/utils/logueador"
)

func (m *Memoria) MostrarMemoria(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain")

	const ancho = 32 // Cuántos bytes mostrar por línea
	for i := 0; i < len(m.EspacioUsuario); i += ancho {
		fmt.Fprintf(w, "%06X  ", i)

		// Mostrar bytes como caracteres legibles
		for j := 0; j < ancho && i+j < len(m.EspacioUsuario); j++ {
			b := m.EspacioUsuario[i+j]
			if b >= 32 && b <= 126 {
				fmt.Fprintf(w, "%c", b)
			} else {
				fmt.Fprintf(w, ".")
			}
		}
		fmt.Fprintln(w)
	}

	logueador.Debug("Memoria enviada en formato texto legible")
}

func (m *Memoria) MostrarOcupadas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	m.mu.Lock()
	ocupadas := append([]int(nil), m.Ocupadas...)
	m.mu.Unlock()

	utils.ResponderJSON(w, ocupadas)
	logueador.Debug("Ocupadas enviadas")
}

// MostrarVirtual vuelca tam bytes desde la dirección virtual va del espacio token,
// vistos como los ve el proceso.
func (m *Memoria) MostrarVirtual(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	token, errToken := strconv.ParseUint(query.Get("token"), 10, 64)
	va, errVA := strconv.ParseUint(query.Get("va"), 0, 64)
	tamanio, errTam := strconv.Atoi(query.Get("tam"))
	if errToken != nil || errVA != nil || errTam != nil || tamanio <= 0 {
		http.Error(w, "se esperan token, va y tam", http.StatusBadRequest)
		return
	}

	leidos, err := m.LeerVirtual(token, va, tamanio)
	if err != nil {
		logueador.Error("No se pudo leer %d bytes en %#x del token %d (%v)", tamanio, va, token, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, hex.Dump(leidos))
}
