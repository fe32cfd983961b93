package storesvc

import (
	"context"
	"strings"
	"sync"
)

// DummyService keeps objects in memory for dev & tests.
type DummyService struct {
	mutex   sync.RWMutex
	objects map[string][]byte

	FailPut error
}

var _ Service = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{objects: make(map[string][]byte)}
}

func (svc *DummyService) Put(_ context.Context, path string, data []byte, _ string) (string, error) {
	if svc.FailPut != nil {
		return "", svc.FailPut
	}

	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	path = strings.TrimLeft(path, "/")
	buf := make([]byte, len(data))
	copy(buf, data)
	svc.objects[path] = buf
	return "https://media.localhost/" + path, nil
}

// Get returns a stored object. Test helper.
func (svc *DummyService) Get(path string) ([]byte, bool) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	data, ok := svc.objects[strings.TrimLeft(path, "/")]
	return data, ok
}
