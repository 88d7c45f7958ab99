package sink

import (
	"image"
	"slices"
	"sync"

	"golang.org/x/image/draw"
)

// MemorySink keeps every saved raster in memory. FailOn, when set, can reject a save by name.
type MemorySink struct {
	mutex  sync.Mutex
	images map[string]*image.RGBA
	saves  []string

	FailOn func(name string) error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{images: make(map[string]*image.RGBA)}
}

func (ms *MemorySink) Save(name string, img image.Image) error {
	if ms.FailOn != nil {
		if err := ms.FailOn(name); err != nil {
			return err
		}
	}

	// copy so later changes by the caller are not visible here
	stored := image.NewRGBA(img.Bounds())
	draw.Draw(stored, stored.Bounds(), img, img.Bounds().Min, draw.Src)

	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	if ms.images == nil {
		ms.images = make(map[string]*image.RGBA)
	}
	ms.images[name] = stored
	ms.saves = append(ms.saves, name)
	return nil
}

// Names returns the distinct saved names in sorted order.
func (ms *MemorySink) Names() []string {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	names := make([]string, 0, len(ms.images))
	for name := range ms.images {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Saves is the number of Save calls that succeeded, repeats included.
func (ms *MemorySink) Saves() int {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	return len(ms.saves)
}

func (ms *MemorySink) Image(name string) (*image.RGBA, bool) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	img, ok := ms.images[name]
	return img, ok
}

// MemoryEnsurer records the directories it was asked for.
type MemoryEnsurer struct {
	mutex sync.Mutex
	dirs  []string
}

func (me *MemoryEnsurer) Ensure(dir string) error {
	me.mutex.Lock()
	defer me.mutex.Unlock()
	if !slices.Contains(me.dirs, dir) {
		me.dirs = append(me.dirs, dir)
	}
	return nil
}

func (me *MemoryEnsurer) Dirs() []string {
	me.mutex.Lock()
	defer me.mutex.Unlock()
	return slices.Clone(me.dirs)
}
