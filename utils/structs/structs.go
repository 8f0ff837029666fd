package structs

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
)

const (
	MaxSyscallNum   = 500
	TamanioTimeVal  = 16
	TamanioTaskInfo = 2016

	offsetSyscalls = 4
	offsetTiempo   = 2008
)

// TimeVal se escribe en memoria de usuario como {sec, usec}, dos u64 little-endian.
type TimeVal struct {
	Sec  uint64
	Usec uint64
}

func TimeValDesdeMicros(us uint64) TimeVal {
	return TimeVal{Sec: us / 1_000_000, Usec: us % 1_000_000}
}

func (tv TimeVal) Bytes() []byte {
	b := make([]byte, TamanioTimeVal)
	binary.LittleEndian.PutUint64(b[0:8], tv.Sec)
	binary.LittleEndian.PutUint64(b[8:16], tv.Usec)
	return b
}

func DecodificarTimeVal(b []byte) (TimeVal, error) {
	if len(b) < TamanioTimeVal {
		return TimeVal{}, fmt.Errorf("timeval: se necesitan %d bytes, llegaron %d", TamanioTimeVal, len(b))
	}
	return TimeVal{
		Sec:  binary.LittleEndian.Uint64(b[0:8]),
		Usec: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}

// TaskInfo ocupa 2016 bytes: estado u32 en 0, contadores u32 desde 4, relleno, tiempo u64 en 2008.
type TaskInfo struct {
	Estado   uint32
	Syscalls [MaxSyscallNum]uint32
	TiempoMs uint64
}

func (ti *TaskInfo) Bytes() []byte {
	b := make([]byte, TamanioTaskInfo)
	binary.LittleEndian.PutUint32(b[0:4], ti.Estado)
	for i, n := range ti.Syscalls {
		off := offsetSyscalls + 4*i
		binary.LittleEndian.PutUint32(b[off:off+4], n)
	}
	binary.LittleEndian.PutUint64(b[offsetTiempo:offsetTiempo+8], ti.TiempoMs)
	return b
}

func DecodificarTaskInfo(b []byte) (TaskInfo, error) {
	var ti TaskInfo
	if len(b) < TamanioTaskInfo {
		return ti, fmt.Errorf("taskinfo: se necesitan %d bytes, llegaron %d", TamanioTaskInfo, len(b))
	}
	ti.Estado = binary.LittleEndian.Uint32(b[0:4])
	for i := range ti.Syscalls {
		off := offsetSyscalls + 4*i
		ti.Syscalls[i] = binary.LittleEndian.Uint32(b[off : off+4])
	}
	ti.TiempoMs = binary.LittleEndian.Uint64(b[offsetTiempo : offsetTiempo+8])
	return ti, nil
}

// ---------------------------- Permisos ----------------------------//
type Permisos uint8

const (
	PermisoR Permisos = 1 << 1
	PermisoW Permisos = 1 << 2
	PermisoX Permisos = 1 << 3
	PermisoU Permisos = 1 << 4
)

// PermisosDesdePuerto traduce la máscara de mmap (bit0=R, bit1=W, bit2=X) y agrega U.
// Devuelve false si la máscara tiene bits fuera de rango o no pide ningún permiso.
func PermisosDesdePuerto(puerto uint64) (Permisos, bool) {
	if puerto&^0x7 != 0 || puerto&0x7 == 0 {
		return 0, false
	}
	perms := PermisoU
	if puerto&0x1 != 0 {
		perms |= PermisoR
	}
	if puerto&0x2 != 0 {
		perms |= PermisoW
	}
	if puerto&0x4 != 0 {
		perms |= PermisoX
	}
	return perms, true
}

func (p Permisos) String() string {
	var sb strings.Builder
	for _, par := range []struct {
		bit   Permisos
		letra byte
	}{{PermisoR, 'R'}, {PermisoW, 'W'}, {PermisoX, 'X'}, {PermisoU, 'U'}} {
		if p&par.bit != 0 {
			sb.WriteByte(par.letra)
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// ---------------------------- MapSeguro ----------------------------//
type MapSeguro[K comparable, V any] struct {
	mu    sync.RWMutex
	datos map[K]V
}

func NewMapSeguro[K comparable, V any]() *MapSeguro[K, V] {
	return &MapSeguro[K, V]{datos: make(map[K]V)}
}

func (m *MapSeguro[K, V]) Agregar(clave K, valor V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datos[clave] = valor
}

func (m *MapSeguro[K, V]) Obtener(clave K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	valor, ok := m.datos[clave]
	return valor, ok
}

// Valores devuelve una copia de los valores, sin orden garantizado.
func (m *MapSeguro[K, V]) Valores() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	valores := make([]V, 0, len(m.datos))
	for _, v := range m.datos {
		valores = append(valores, v)
	}
	return valores
}
