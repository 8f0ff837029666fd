package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mattn/go-tty"

	"azzaros/cpu/utilsCPU"
	"azzaros/kernel/utilsKernel"
	"azzaros/memoria/utilsMemoria"
	"azzaros/utils"
	"azzaros/utils/config"
	"azzaros/utils/logueador"
)

// Uso: kernel [programa] [directorio de configs]
func main() {
	nombrePrograma := "stride"
	if len(os.Args) > 1 {
		nombrePrograma = os.Args[1]
	}
	rutaConfigs := "configs"
	if len(os.Args) > 2 {
		rutaConfigs = os.Args[2]
	}

	configKernel := config.PorDefectoKernel()
	configMemoria := config.PorDefectoMemoria()
	configCPU := config.PorDefectoCPU()
	cargar(filepath.Join(rutaConfigs, "kernel.json"), &configKernel)
	cargar(filepath.Join(rutaConfigs, "memoria.json"), &configMemoria)
	cargar(filepath.Join(rutaConfigs, "cpu.json"), &configCPU)

	logueador.ConfigurarLogger("log_KERNEL", configKernel.LogLevel)

	programa, existe := programas[nombrePrograma]
	if !existe {
		logueador.Error("El programa %s no existe", nombrePrograma)
		os.Exit(1)
	}

	memoria := utilsMemoria.NuevaMemoria(configMemoria)
	mmu := utilsCPU.NuevaMMU(configCPU, memoria)
	kernel, err := utilsKernel.Nuevo(configKernel, memoria, mmu, utilsKernel.NuevoRelojSistema())
	if err != nil {
		logueador.Error("No se pudo crear el kernel (%v)", err)
		os.Exit(1)
	}

	if configKernel.PortKernel != 0 {
		go utils.IniciarServidor(configKernel.PortKernel, kernel.Rutas())
	}

	esperarTecla()

	programa(kernel)

	ctx, cancelar := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancelar()

	err = kernel.Correr(ctx)
	switch {
	case err == nil:
		logueador.Info("## Finalizó el programa %s", nombrePrograma)
	case errors.Is(err, utilsKernel.ErrTodasBloqueadas):
		logueador.Error("## El programa %s quedó trabado: %v", nombrePrograma, err)
		os.Exit(2)
	default:
		logueador.Warn("## Planificador detenido: %v", err)
	}
}

func cargar(ruta string, destino any) {
	if err := config.CargarConfiguracion(ruta, destino); err != nil {
		panic(err)
	}
}

// Espera una tecla antes de arrancar el planificador. Sin terminal arranca directo.
func esperarTecla() {
	terminal, err := tty.Open()
	if err != nil {
		logueador.Warn("No hay terminal disponible, se arranca sin esperar (%v)", err)
		return
	}
	defer terminal.Close()

	logueador.Info("Presione cualquier tecla para iniciar la planificación...")
	if _, err := terminal.ReadRune(); err != nil {
		logueador.Warn("No se pudo leer la tecla (%v)", err)
	}
}
