package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"azzaros/utils/logueador"
)

// ----------------------------------- CONFIGS --------------------------------------------------
type ConfigKernel struct {
	PortKernel      int    `json:"port_kernel"` // 0 deshabilita el servidor de depuración
	BigStride       uint64 `json:"big_stride"`
	DefaultPriority uint64 `json:"default_priority"`
	DeadlockDetect  bool   `json:"deadlock_detect"`
	LogLevel        string `json:"log_level"`
}

type ConfigMemory struct {
	MemorySize     int    `json:"memory_size"`
	PageSize       int    `json:"page_size"`
	EntriesPerPage int    `json:"entries_per_page"`
	NumberOfLevels int    `json:"number_of_levels"`
	HeapBase       uint64 `json:"heap_base"`
	LogLevel       string `json:"log_level"`
}

type ConfigCPU struct {
	TlbEntries     int    `json:"tlb_entries"`
	TlbReplacement string `json:"tlb_replacement"`
	LogLevel       string `json:"log_level"`
}

func PorDefectoKernel() ConfigKernel {
	return ConfigKernel{
		BigStride:       1 << 20,
		DefaultPriority: 16,
		LogLevel:        "INFO",
	}
}

func PorDefectoMemoria() ConfigMemory {
	return ConfigMemory{
		MemorySize:     1 << 20, // 256 frames de 4 KiB
		PageSize:       4096,
		EntriesPerPage: 512,
		NumberOfLevels: 3,
		HeapBase:       0x4000_0000,
		LogLevel:       "INFO",
	}
}

func PorDefectoCPU() ConfigCPU {
	return ConfigCPU{
		TlbEntries:     8,
		TlbReplacement: "LRU",
		LogLevel:       "INFO",
	}
}

// ------------------------------------------------------------------------------------------------
// CargarConfiguracion decodifica filePath sobre configVar, que ya trae los valores por defecto.
// Antes carga el .env que esté en el mismo directorio.
func CargarConfiguracion(filePath string, configVar any) error {
	CargarVariablesEntorno(filepath.Join(filepath.Dir(filePath), ".env"))

	fileContent, err := os.ReadFile(filePath)
	if err != nil {
		logueador.Error("No se pudo leer el archivo de configuración (%v)", err)
		return fmt.Errorf("leyendo %s: %w", filePath, err)
	}

	// Expand environment variables
	expandedContent := expandEnvWithMath(string(fileContent))

	// Decode the expanded JSON
	if err := json.Unmarshal([]byte(expandedContent), configVar); err != nil {
		logueador.Error("No se pudo decodificar el archivo JSON (%v)", err)
		return fmt.Errorf("decodificando %s: %w", filePath, err)
	}

	logueador.Info("Configuración cargada correctamente: %+v", configVar)
	return nil
}

// ----------------------------------------------- UTILIDADES .ENV --------------------------------------------
// Basicamente hice esto para facilitar las constantes de configuración comunes entre tests

func CargarVariablesEntorno(envPath string) {
	file, err := os.Open(envPath)
	if err != nil {
		logueador.Debug("No se pudo abrir el archivo .env (%v), usando variables de entorno del sistema", err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on first '=' only
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			// Only set if not already set in environment
			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		logueador.Error("Error leyendo archivo .env: %v", err)
	}
}

var reOperacion = regexp.MustCompile(`\$\{([^}+-]+)([+-]\d+)\}`)

// Esto carga la variable de entorno si le metemos un operador de offset como + o -
// Ejemplo ${BIG_STRIDE+1000} = 1048576 + 1000
func expandEnvWithMath(content string) string {
	content = reOperacion.ReplaceAllStringFunc(content, func(match string) string {
		parts := reOperacion.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}

		varName := parts[1]
		operation := parts[2]

		envValue := os.Getenv(varName)
		if envValue == "" {
			logueador.Warn("Variable de entorno %s no encontrada para operación %s", varName, operation)
			return match
		}

		baseValue, err := strconv.Atoi(envValue)
		if err != nil {
			logueador.Warn("No se pudo convertir %s a número para la variable %s", envValue, varName)
			return match
		}

		// El signo viaja con el operando: "+1000" o "-1000"
		operand, err := strconv.Atoi(operation)
		if err != nil {
			logueador.Warn("No se pudo convertir %s a número en la operación %s", operation, match)
			return match
		}

		return strconv.Itoa(baseValue + operand)
	})

	// Luego expandir variables normales (${VAR})
	return os.ExpandEnv(content)
}
