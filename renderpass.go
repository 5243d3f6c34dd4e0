package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

type RenderPass struct {
	Device       *Device
	VKRenderPass vk.RenderPass
}

// RenderPassConfig describes a single subpass render pass with a color
// attachment and an optional depth attachment.
type RenderPassConfig struct {
	ColorFormat vk.Format

	// DepthFormat enables the depth attachment when non zero.
	DepthFormat vk.Format

	// FinalLayout is the layout the color attachment ends the pass in.
	// Defaults to present source, which is what a swapchain image wants.
	FinalLayout vk.ImageLayout

	// Called before the native render pass is created to allow for
	// additional configuration
	Configure func(createInfo vk.RenderPassCreateInfo)
}

// VKRenderPassCreateInfo assembles the native create info from the config.
func (c *RenderPassConfig) VKRenderPassCreateInfo() vk.RenderPassCreateInfo {
	finalLayout := c.FinalLayout
	if finalLayout == vk.ImageLayoutUndefined {
		finalLayout = vk.ImageLayoutPresentSrc
	}

	attachments := []vk.AttachmentDescription{{
		Format:         c.ColorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    finalLayout,
	}}

	colorAttachments := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    colorAttachments,
	}

	if c.DepthFormat != vk.FormatUndefined {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         c.DepthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
}

func (d *Device) CreateRenderPass(config *RenderPassConfig) (*RenderPass, error) {
	createInfo := config.VKRenderPassCreateInfo()

	if config.Configure != nil {
		config.Configure(createInfo)
	}

	var renderPass vk.RenderPass
	err := vk.Error(vk.CreateRenderPass(d.VKDevice, &createInfo, nil, &renderPass))
	if err != nil {
		return nil, err
	}

	return &RenderPass{Device: d, VKRenderPass: renderPass}, nil
}

func (r *RenderPass) Destroy() {
	vk.DestroyRenderPass(r.Device.VKDevice, r.VKRenderPass, nil)
	r.VKRenderPass = vk.NullRenderPass
}

type Framebuffer struct {
	Device        *Device
	VKFramebuffer vk.Framebuffer
	Extent        vk.Extent2D
}

// CreateFramebuffer creates a framebuffer over the given attachment views.
func (d *Device) CreateFramebuffer(renderPass *RenderPass, extent vk.Extent2D, attachments ...*ImageView) (*Framebuffer, error) {
	views := make([]vk.ImageView, len(attachments))
	for i, a := range attachments {
		views[i] = a.VKImageView
	}

	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass.VKRenderPass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var framebuffer vk.Framebuffer
	err := vk.Error(vk.CreateFramebuffer(d.VKDevice, &createInfo, nil, &framebuffer))
	if err != nil {
		return nil, err
	}

	return &Framebuffer{Device: d, VKFramebuffer: framebuffer, Extent: extent}, nil
}

func (f *Framebuffer) Destroy() {
	vk.DestroyFramebuffer(f.Device.VKDevice, f.VKFramebuffer, nil)
}
