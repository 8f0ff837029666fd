package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvWithMath(t *testing.T) {
	t.Setenv("AZZ_BASE", "8000")

	casos := []struct {
		entrada  string
		esperado string
	}{
		{`{"port_kernel": ${AZZ_BASE+1000}}`, `{"port_kernel": 9000}`},
		{`{"port_kernel": ${AZZ_BASE-1000}}`, `{"port_kernel": 7000}`},
		{`{"port_kernel": ${AZZ_BASE}}`, `{"port_kernel": 8000}`},
		{`{"log_level": "DEBUG"}`, `{"log_level": "DEBUG"}`},
	}

	for _, c := range casos {
		if got := expandEnvWithMath(c.entrada); got != c.esperado {
			t.Errorf("expandEnvWithMath(%q) = %q, se esperaba %q", c.entrada, got, c.esperado)
		}
	}
}

func TestCargarConfiguracionRespetaDefectos(t *testing.T) {
	dir := t.TempDir()
	ruta := filepath.Join(dir, "kernel.json")
	t.Setenv("AZZ_STRIDE", "4096")
	contenido := `{"big_stride": ${AZZ_STRIDE}, "deadlock_detect": true}`
	if err := os.WriteFile(ruta, []byte(contenido), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := PorDefectoKernel()
	if err := CargarConfiguracion(ruta, &cfg); err != nil {
		t.Fatalf("CargarConfiguracion: %v", err)
	}

	if cfg.BigStride != 4096 {
		t.Errorf("BigStride = %d, se esperaba 4096", cfg.BigStride)
	}
	if !cfg.DeadlockDetect {
		t.Errorf("DeadlockDetect debería quedar habilitado")
	}
	if cfg.DefaultPriority != 16 {
		t.Errorf("DefaultPriority = %d, se esperaba conservar el valor por defecto 16", cfg.DefaultPriority)
	}
}

func TestCargarConfiguracionArchivoInexistente(t *testing.T) {
	cfg := PorDefectoCPU()
	if err := CargarConfiguracion(filepath.Join(t.TempDir(), "nada.json"), &cfg); err == nil {
		t.Fatal("se esperaba error para un archivo inexistente")
	}
}
