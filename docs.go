/*
Package vks implements a safe abstraction atop the Vulkan graphics and compute
framework for go. Vulkan hands the application full control over GPU resources,
command recording and synchronization, and in exchange does essentially no
validation of its own - any mistake in resource lifetime or ordering is at best
a validation layer message and at worst a device loss.

This package keeps the thin wrapper style - every object holds its native
vulkan handle and you can always drop down to the vk package - but adds the
bookkeeping that Vulkan itself refuses to do:

# Resource tracking

Buffers and images created through this package carry their usage flags and a
small amount of access state. When a command buffer recorded through a Recorder
is submitted with Queue.SubmitTracked, the resources it touches are checked and
locked for the duration of the submission: two submissions that write the same
resource concurrently are rejected with an AccessError instead of racing on the
GPU.

# Command recording

The Recorder wraps a CommandBuffer and tracks bound state (pipelines,
descriptor sets, vertex and index buffers) the same way the driver sees it.
Draws and dispatches are validated against that state when they are recorded,
so a missing pipeline or an incompatible descriptor set is reported at the
call site rather than as a crash at submit time. Commands declare which
resources they read and write; the Recorder inserts pipeline barriers between
conflicting accesses and batches adjacent barriers together, so the common
write-then-read pattern works without any manual barrier code.

A Recorder may also be created without a target command buffer, in which case
it performs all of the state tracking and validation but records nothing. This
is useful for exercising render code in tests where no device is available.

# Shader reflection

Creating a ShaderModule parses the SPIR-V binary and records entry points,
descriptor bindings and push constant use on the module's Info. The module can
then generate its own descriptor set layouts and pipeline layout, so the
layouts always match what the shader actually declares.

# Memory pools

Vulkan limits the number of live device memory allocations, so the
ResourceManager allocates a small number of large DeviceMemory blocks and
sub-allocates buffers and images out of them using a simple allocator. Pools
are named, and a pool named "staging" is used to stage data into device local
memory.

Native Vulkan terms used throughout

	Instance	the vulkan runtime instance
	PhysicalDevice	the physical hardware device
	Device		the logical device which is the target of most vulkan apis
	Queue		a queue which work (command buffers) may be submitted to
	DeviceMemory	an allocation of memory on the host or device
	Buffer		a description of some bit of data (vertex, index, or other)
	Image		a texture, render target or swapchain image
	Pipeline	a description of how to process data on the GPU
*/
package vks
