package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"azzaros/utils/logueador"
)

// ResponderJSON codifica valor como cuerpo de la respuesta.
func ResponderJSON(w http.ResponseWriter, valor any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(valor); err != nil {
		logueador.Error("No se pudo codificar la respuesta (%v)", err)
	}
}

func IniciarServidor(puerto int, handler http.Handler) error {
	logueador.Info("Inicializando servidor en el puerto %d", puerto)
	err := http.ListenAndServe(fmt.Sprintf(":%d", puerto), handler)
	if err != nil {
		logueador.Error("El servidor en el puerto %d terminó (%v)", puerto, err)
	}
	return err
}
