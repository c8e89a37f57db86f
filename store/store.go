// Package store is a facade over the node's non-volatile configuration
// image: fixed-offset, capacity-capped, NUL-terminated string slots. There
// are no transactional guarantees; a write interrupted by power loss can
// leave a corrupted slot, which is accepted as a hardware-level risk.
package store

import (
	"fmt"
	"os"
	"sync"

	logger "github.com/sirupsen/logrus"
)

type Field int

const (
	FieldCollectorURL Field = iota
	FieldWifiName
	FieldWifiCredential
	FieldReportInterval
	FieldPassword
)

type slot struct {
	name     string
	offset   int
	capacity int
}

// Slot layout is fixed; each slot reserves capacity+1 bytes so the
// terminator always fits.
var slots = map[Field]slot{
	FieldCollectorURL:   {"collectorURL", 0, 66},
	FieldWifiName:       {"wifiName", 67, 32},
	FieldWifiCredential: {"wifiCredential", 100, 64},
	FieldReportInterval: {"reportInterval", 165, 3},
	FieldPassword:       {"password", 169, 16},
}

const imageSize = 256

func (f Field) String() string {
	if s, ok := slots[f]; ok {
		return s.name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Capacity reports the declared length cap for a field.
func (f Field) Capacity() int {
	return slots[f].capacity
}

type Store struct {
	image []byte
	path  string
	lock  sync.Mutex
}

// NewMem returns a store backed only by memory. Used by tests and by the
// simulators, where losing the image on exit is fine.
func NewMem() *Store {
	return &Store{image: make([]byte, imageSize)}
}

// Open loads (or creates) a file-backed image at path.
func Open(path string) (*Store, error) {
	s := &Store{image: make([]byte, imageSize), path: path}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Infof("No config image at [%v], starting blank", path)
		return s, s.flush()
	}
	if err != nil {
		return nil, err
	}
	copy(s.image, raw)
	return s, nil
}

// Read returns the string stored in the field's slot, up to the first NUL.
func (s *Store) Read(f Field) string {
	s.lock.Lock()
	defer s.lock.Unlock()
	sl := slots[f]
	end := sl.offset
	for end < sl.offset+sl.capacity && s.image[end] != 0 {
		end++
	}
	return string(s.image[sl.offset:end])
}

// Write stores val into the field's slot. Values longer than the slot's
// declared capacity are refused and the image is left untouched.
func (s *Store) Write(f Field, val string) error {
	sl := slots[f]
	if len(val) > sl.capacity {
		return fmt.Errorf("%v: value of %d bytes exceeds capacity %d", f, len(val), sl.capacity)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	n := copy(s.image[sl.offset:], val)
	s.image[sl.offset+n] = 0
	return s.flush()
}

func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}
	if err := os.WriteFile(s.path, s.image, 0o644); err != nil {
		logger.Errorf("Failed to persist config image [%v]", err)
		return err
	}
	return nil
}
