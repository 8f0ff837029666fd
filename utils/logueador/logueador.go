package logueador

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ArchivoExiste verifica si un archivo ya existe en el directorio de trabajo
func ArchivoExiste(nombreArchivo string) bool {
	_, err := os.Stat(nombreArchivo + ".log")
	return !os.IsNotExist(err)
}

// CREA ARCHIVO .LOG
func ConfigurarLogger(nombreArchivoLog string, nivelLog string) {

	// Crear el directorio logs si no existe
	if _, err := os.Stat("logs"); os.IsNotExist(err) {
		err := os.MkdirAll("logs", 0755)
		if err != nil {
			panic(err)
		}
	}

	nombreCompleto := "logs/" + nombreArchivoLog
	i := 1
	for ArchivoExiste(nombreCompleto) {
		nombreCompleto = "logs/" + nombreArchivoLog + "_" + strconv.Itoa(i)
		i++
	}

	logFile, err := os.OpenFile(nombreCompleto+".log", os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		panic(err)
	}

	ConfigurarSalida(logFile, nivelLog)

	Info("Logger %s.log configurado", nombreArchivoLog)
}

// ConfigurarSalida redirige el logger a w con el nivel indicado.
func ConfigurarSalida(w io.Writer, nivelLog string) {
	log.SetOutput(w)
	slog.SetLogLoggerLevel(NivelDesdeTexto(nivelLog))
	log.SetFlags(log.Lmicroseconds)
}

func NivelDesdeTexto(nivelLog string) slog.Level {
	switch strings.ToUpper(nivelLog) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo // Default
	}
}

// ---------------------------- Funciones log ----------------------------//
func Info(formato string, args ...any) {
	slog.Info(fmt.Sprintf(formato, args...))
}

func Error(formato string, args ...any) {
	slog.Error(fmt.Sprintf(formato, args...))
}

func Warn(formato string, args ...any) {
	slog.Warn(fmt.Sprintf(formato, args...))
}

func Debug(formato string, args ...any) {
	slog.Debug(fmt.Sprintf(formato, args...))
}

// ---------------------------- KERNEL ----------------------------//
// Log obligatorio 1/9
func SyscallRecibida(pid uint, tid int, nombreSyscall string) {
	Info("## (%d:%d) - Solicitó syscall: %s", pid, tid, nombreSyscall)
}

// Log obligatorio 2/9
func CreacionDeTarea(pid uint, tid int, prioridad uint64) {
	Info("## (%d:%d) Se crea la tarea - Prioridad: %d - Estado: READY", pid, tid, prioridad)
}

// Log obligatorio 3/9
func CambioDeEstado(pid uint, tid int, estadoAnterior string, estadoNuevo string) {
	Info("## (%d:%d) pasa del estado %s al estado %s", pid, tid, estadoAnterior, estadoNuevo)
}

// Log obligatorio 4/9
func MotivoDeBloqueo(pid uint, tid int, motivo string) {
	Info("## (%d:%d) - Bloqueado por: %s", pid, tid, motivo)
}

// Log obligatorio 5/9
func Despacho(pid uint, tid int, stride uint64) {
	Info("## (%d:%d) - Despachado por STRIDE - Stride: %d", pid, tid, stride)
}

// Log obligatorio 6/9
func FinDeTarea(pid uint, tid int, codigo int) {
	Info("## (%d:%d) - Finaliza la tarea - Código: %d", pid, tid, codigo)
}

// Log obligatorio 7/9
func DeadlockDetectado(pid uint, tid int, recurso string, ciclo []int) {
	Warn("## (%d:%d) - Deadlock detectado al pedir %s - Tareas en ciclo: %v", pid, tid, recurso, ciclo)
}

// Log obligatorio 8/9
func CreacionDeRecurso(pid uint, recurso string, slot int) {
	Info("## (%d) - Se crea %s en el slot %d", pid, recurso, slot)
}

// Log obligatorio 9/9
func MetricasDeEstado(pid uint, tid int, conteo map[string]int) {
	var metricasString string
	for estado, cantidad := range conteo {
		metricasString += fmt.Sprintf("[%s] %d accesos; ", estado, cantidad)
	}
	Info("## (%d:%d) - Métricas de estado: %s", pid, tid, metricasString)
}

// ---------------------------- MEMORIA ----------------------------//
// Log obligatorio 1/3
func CreacionDeEspacio(pid uint, token uint64) {
	Info("## PID: %d - Espacio de direcciones creado - Token: %d", pid, token)
}

// Log obligatorio 2/3
func MapeoDeArea(pid uint, accion string, inicio uint64, fin uint64, permisos string) {
	Info("## PID: %d - %s - Rango: [%#x, %#x) - Permisos: %s", pid, accion, inicio, fin, permisos)
}

// Log obligatorio 3/3
func EscrituraEnEspacioDeUsuario(pid uint, direccionVirtual uint64, tamanio int) {
	Info("## PID: %d - Escritura - Dirección Virtual: %#x - Tamaño: %d", pid, direccionVirtual, tamanio)
}

// ---------------------------- CPU ----------------------------//
// Log obligatorio 1/3
func ObtenerMarco(token uint64, numeroPagina uint64, numeroMarco int) {
	Debug("## Token: %d - OBTENER MARCO - Página: %d - Marco: %d", token, numeroPagina, numeroMarco)
}

// Log obligatorio 2/3
func TLBHit(token uint64, numeroPagina uint64) {
	Debug("## Token: %d - TLB HIT - Pagina: %d", token, numeroPagina)
}

// Log obligatorio 3/3
func TLBMiss(token uint64, numeroPagina uint64) {
	Debug("## Token: %d - TLB MISS - Pagina: %d", token, numeroPagina)
}
