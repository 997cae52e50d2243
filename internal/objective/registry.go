package objective

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"athanor/internal/element"
)

var (
	ErrObjectiveExists   = errors.New("objective already registered")
	ErrObjectiveNotFound = errors.New("objective not found")
)

var objectiveRegistry = struct {
	mu sync.RWMutex
	m  map[string]Objective
}{
	m: make(map[string]Objective),
}

func init() {
	initializeBuiltInObjectives()
}

func initializeBuiltInObjectives() {
	MustRegister(elementCount{symbol: element.Carbon, name: "carbon-count", description: "Maximize the number of carbon atoms."})
	MustRegister(elementCount{symbol: element.Oxygen, name: "oxygen-count", description: "Maximize the number of oxygen atoms."})
	MustRegister(elementCount{symbol: element.Nitrogen, name: "nitrogen-count", description: "Maximize the number of nitrogen atoms."})
	MustRegister(atomCount{})
	MustRegister(bondCount{})
	MustRegister(connectivity{})
	MustRegister(weightTarget{})
	MustRegister(weightRange{})
	MustRegister(stability{})
	MustRegister(hydroxylCount{})
	MustRegister(amineCount{})
	MustRegister(druglikeness{})
}

func Register(obj Objective) error {
	if obj == nil {
		return errors.New("objective is required")
	}
	if obj.Name() == "" {
		return errors.New("objective name is required")
	}

	objectiveRegistry.mu.Lock()
	defer objectiveRegistry.mu.Unlock()

	if _, exists := objectiveRegistry.m[obj.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrObjectiveExists, obj.Name())
	}
	objectiveRegistry.m[obj.Name()] = obj
	return nil
}

func MustRegister(obj Objective) {
	if err := Register(obj); err != nil {
		panic(err)
	}
}

func Get(name string) (Objective, error) {
	objectiveRegistry.mu.RLock()
	obj, ok := objectiveRegistry.m[name]
	objectiveRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectiveNotFound, name)
	}
	return obj, nil
}

func List() []string {
	objectiveRegistry.mu.RLock()
	defer objectiveRegistry.mu.RUnlock()

	names := make([]string, 0, len(objectiveRegistry.m))
	for name := range objectiveRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetObjectiveRegistryForTests() {
	objectiveRegistry.mu.Lock()
	objectiveRegistry.m = make(map[string]Objective)
	objectiveRegistry.mu.Unlock()
	initializeBuiltInObjectives()
}
