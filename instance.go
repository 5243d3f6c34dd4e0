package vks

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Initialize loads the Vulkan implementation using the default instance proc
// address. It must be called before anything else in this package, after the
// windowing system (if any) has provided its proc address.
func Initialize() error {
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "unable to initialize vulkan")
	}
	return nil
}

// InitializeForComputeOnly initializes Vulkan without a windowing system,
// locating the implementation itself. Suitable for compute and offscreen
// work; presentation needs the windowing layer's proc address instead.
func InitializeForComputeOnly() error {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return errors.Wrap(err, "unable to locate a vulkan implementation")
	}
	return Initialize()
}

// Version is used to specify versions of components.
type Version struct {
	Major int
	Minor int
	Patch int
}

// VKVersion returns a Vulkan compatible version representation.
func (v Version) VKVersion() uint32 {
	return vk.MakeVersion(v.Major, v.Minor, v.Patch)
}

// App describes this application to Vulkan and accumulates the layers and
// extensions to enable on the instance.
type App struct {
	// Name the name of the application
	Name string
	// EngineName the name of the engine associated with the application
	EngineName string
	// Version the version of the application
	Version Version
	// APIVersion the expected minimum version of the Vulkan API
	APIVersion Version

	EnabledLayers     []string
	EnabledExtensions []string
}

// EnableLayer adds a layer to the set enabled at instance creation.
func (a *App) EnableLayer(layer string) {
	a.EnabledLayers = append(a.EnabledLayers, layer)
}

// EnableExtension adds an extension to the set enabled at instance creation.
func (a *App) EnableExtension(extension string) {
	a.EnabledExtensions = append(a.EnabledExtensions, extension)
}

// EnableDebugging enables the Khronos validation layer.
func (a *App) EnableDebugging() {
	a.EnableLayer("VK_LAYER_KHRONOS_validation")
}

// SupportedLayers returns the layers supported by the installed Vulkan
// implementation. Vulkan must have been initialized first.
func SupportedLayers() ([]string, error) {
	var count uint32
	err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil))
	if err != nil {
		return nil, err
	}
	layers := make([]vk.LayerProperties, count)
	err = vk.Error(vk.EnumerateInstanceLayerProperties(&count, layers))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range layers {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// SupportedExtensions returns the instance extensions supported by the
// installed Vulkan implementation.
func SupportedExtensions() ([]string, error) {
	var count uint32
	err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil))
	if err != nil {
		return nil, err
	}
	exts := make([]vk.ExtensionProperties, count)
	err = vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, exts))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range exts {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// Instance wraps the vulkan runtime instance.
type Instance struct {
	App        *App
	VKInstance vk.Instance
}

// CreateInstance creates the vulkan instance with the layers and extensions
// accumulated on the App. Unsupported layers are dropped with a log message
// rather than failing instance creation.
func (a *App) CreateInstance() (*Instance, error) {
	supported, err := SupportedLayers()
	if err != nil {
		return nil, errors.Wrap(err, "unable to enumerate layers")
	}

	layers := make([]string, 0, len(a.EnabledLayers))
	for _, want := range a.EnabledLayers {
		found := false
		for _, have := range supported {
			if want == have {
				found = true
				break
			}
		}
		if found {
			layers = append(layers, want)
		} else {
			log.Printf("vks: layer %q not supported, skipping", want)
		}
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(a.Name),
		PEngineName:        safeString(a.EngineName),
		ApplicationVersion: a.Version.VKVersion(),
		ApiVersion:         vk.ApiVersion11,
	}
	if a.APIVersion != (Version{}) {
		appInfo.ApiVersion = a.APIVersion.VKVersion()
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
		EnabledExtensionCount:   uint32(len(a.EnabledExtensions)),
		PpEnabledExtensionNames: safeStrings(a.EnabledExtensions),
	}

	var instance vk.Instance
	err = vk.Error(vk.CreateInstance(&createInfo, nil, &instance))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create instance")
	}

	if err := vk.InitInstance(instance); err != nil {
		return nil, errors.Wrap(err, "unable to load instance functions")
	}

	return &Instance{App: a, VKInstance: instance}, nil
}

// PhysicalDevices enumerates the physical devices available to the instance.
func (i *Instance) PhysicalDevices() ([]*PhysicalDevice, error) {
	var count uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &count, nil))
	if err != nil {
		return nil, err
	}

	devices := make([]vk.PhysicalDevice, count)
	err = vk.Error(vk.EnumeratePhysicalDevices(i.VKInstance, &count, devices))
	if err != nil {
		return nil, err
	}

	ret := make([]*PhysicalDevice, count)
	for j, device := range devices {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(device, &props)
		props.Deref()

		ret[j] = &PhysicalDevice{
			DeviceName:                 vk.ToString(props.DeviceName[:]),
			VKPhysicalDevice:           device,
			VKPhysicalDeviceProperties: props,
		}
	}

	return ret, nil
}

func (i *Instance) Destroy() {
	vk.DestroyInstance(i.VKInstance, nil)
}
