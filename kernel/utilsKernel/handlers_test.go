package utilsKernel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlers(t *testing.T) {
	k := kernelDePrueba(t, nil)
	p := k.CrearProceso()
	k.CrearTarea(p, func() int {
		k.SyscallMutexCreate(true)
		k.SyscallSemaphoreCreate(2)
		return 0
	})
	if err := correr(t, k); err != nil {
		t.Fatal(err)
	}
	rutas := k.Rutas()

	pedir := func(metodo, url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		rutas.ServeHTTP(rec, httptest.NewRequest(metodo, url, nil))
		return rec
	}

	t.Run("estado", func(t *testing.T) {
		rec := pedir(http.MethodGet, "/estado")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var estados []EstadoDeTarea
		if err := json.NewDecoder(rec.Body).Decode(&estados); err != nil {
			t.Fatal(err)
		}
		if len(estados) != 1 || estados[0].Estado != "ZOMBIE" || estados[0].Conteo["RUNNING"] != 1 {
			t.Fatalf("estados = %+v", estados)
		}
	})

	t.Run("recursos", func(t *testing.T) {
		rec := pedir(http.MethodGet, "/recursos?pid=0")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var estado EstadoDeRecursos
		if err := json.NewDecoder(rec.Body).Decode(&estado); err != nil {
			t.Fatal(err)
		}
		if !estado.Conservado || estado.Matrices == nil || len(estado.Matrices.Total) != 2 {
			t.Fatalf("estado = %+v", estado)
		}
		if estado.Matrices.Total[1] != 2 || estado.Matrices.Orden[0] != (Recurso{Tipo: RecursoMutex, ID: 0}) {
			t.Fatalf("matrices = %+v", estado.Matrices)
		}
	})

	t.Run("grafo de espera", func(t *testing.T) {
		rec := pedir(http.MethodGet, "/grafo-espera?pid=0")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
			t.Fatalf("Content-Type = %q", ct)
		}
		if !strings.Contains(rec.Body.String(), "TID 0") {
			t.Fatalf("dot inesperado:\n%s", rec.Body.String())
		}
	})

	errores := []struct {
		nombre string
		metodo string
		url    string
		status int
	}{
		{"pid inválido", http.MethodGet, "/recursos?pid=abc", http.StatusBadRequest},
		{"sin pid", http.MethodGet, "/grafo-espera", http.StatusBadRequest},
		{"proceso inexistente", http.MethodGet, "/recursos?pid=7", http.StatusNotFound},
		{"método", http.MethodPost, "/estado", http.StatusMethodNotAllowed},
		{"método en recursos", http.MethodPost, "/recursos?pid=0", http.StatusMethodNotAllowed},
	}
	for _, c := range errores {
		t.Run(c.nombre, func(t *testing.T) {
			if rec := pedir(c.metodo, c.url); rec.Code != c.status {
				t.Fatalf("status = %d, se esperaba %d", rec.Code, c.status)
			}
		})
	}
}
