package vks

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	vk "github.com/vulkan-go/vulkan"
)

type PipelineCache struct {
	Device          *Device
	VKPipelineCache vk.PipelineCache
}

// CreatePipelineCache creates an empty pipeline cache.
func (d *Device) CreatePipelineCache() (*PipelineCache, error) {
	return d.createPipelineCache(nil)
}

func (d *Device) createPipelineCache(initial []byte) (*PipelineCache, error) {
	createInfo := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}
	if len(initial) > 0 {
		createInfo.InitialDataSize = uint(len(initial))
		createInfo.PInitialData = unsafeBytes(initial)
	}

	var pipelineCache vk.PipelineCache
	err := vk.Error(vk.CreatePipelineCache(d.VKDevice, &createInfo, nil, &pipelineCache))
	if err != nil {
		return nil, err
	}

	return &PipelineCache{Device: d, VKPipelineCache: pipelineCache}, nil
}

// cacheFile names the on disk cache for this device. The file is keyed by
// the driver's pipeline cache UUID so a cache written by one driver is
// never fed to another.
func (d *Device) cacheFile(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("pipeline-%s.cache", d.PhysicalDevice.CacheUUID()))
}

// LoadPipelineCache creates a pipeline cache primed from disk. A missing or
// unreadable file just produces an empty cache.
func (d *Device) LoadPipelineCache(dir string) (*PipelineCache, error) {
	file := d.cacheFile(dir)

	data, err := os.ReadFile(file)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("ignoring pipeline cache %s: %v", file, err)
		}
		return d.CreatePipelineCache()
	}
	return d.createPipelineCache(data)
}

// Data retrieves the cache contents from the driver.
func (p *PipelineCache) Data() ([]byte, error) {
	var size uint
	err := vk.Error(vk.GetPipelineCacheData(p.Device.VKDevice, p.VKPipelineCache, &size, nil))
	if err != nil {
		return nil, err
	}

	data := make([]byte, size)
	err = vk.Error(vk.GetPipelineCacheData(p.Device.VKDevice, p.VKPipelineCache, &size, unsafeBytes(data)))
	if err != nil {
		return nil, err
	}
	return data[:size], nil
}

// Save writes the cache contents to disk for LoadPipelineCache to pick up
// next run.
func (p *PipelineCache) Save(dir string) error {
	file := p.Device.cacheFile(dir)
	data, err := p.Data()
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0o644)
}

func (p *PipelineCache) Destroy() {
	vk.DestroyPipelineCache(p.Device.VKDevice, p.VKPipelineCache, nil)
}
