package vks

import (
	"image"
	"image/draw"

	// Registers the png decoder for texture loading.
	_ "image/png"
	"os"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// loadRGBA decodes an image file and converts it to the tightly packed RGBA
// layout vulkan expects for R8g8b8a8 uploads.
func loadRGBA(filename string) (*image.RGBA, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	src, _, err := image.Decode(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", filename)
	}

	b := src.Bounds()
	m := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(m, m.Bounds(), src, b.Min, draw.Src)
	return m, nil
}

// StageTextureFromDisk loads an image file and uploads it into a sampled
// image allocated from this pool. See StageTextureFromImage.
func (p *ImageResourcePool) StageTextureFromDisk(filename string, cmd *CommandBuffer, queue *Queue) (*ImageResource, error) {
	m, err := loadRGBA(filename)
	if err != nil {
		return nil, err
	}
	return p.StageTextureFromImage(m, cmd, queue)
}

// StageTextureFromImage uploads the pixels into a device local sampled image
// allocated from this pool. The copy from the staging pool and the transition
// to shader read layout are recorded through a tracked recorder and the call
// blocks until the upload completes, so the returned image is ready to bind
// into a descriptor set.
func (p *ImageResourcePool) StageTextureFromImage(srcImg *image.RGBA, cmd *CommandBuffer, queue *Queue) (*ImageResource, error) {
	b := srcImg.Bounds()
	extent := vk.Extent2D{Width: uint32(b.Dx()), Height: uint32(b.Dy())}

	img, err := p.AllocateImage(extent, vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal,
		vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit)
	if err != nil {
		return nil, err
	}

	upload := func() error {
		if err := img.AllocateStagingResource(); err != nil {
			return err
		}
		defer img.FreeStagingResource()

		if _, err := img.StagingResource.ResourcePool.Memory.Map(); err != nil {
			return err
		}
		srb := img.StagingResource.Bytes()
		if srb == nil {
			return errors.New("staging pool memory is not mapped")
		}
		copy(srb, srcImg.Pix)

		r := NewRecorder(cmd)
		if err := r.BeginOneTime(); err != nil {
			return err
		}
		if err := r.CopyBufferToImage(img.StagingResource.Buffer, img.Image); err != nil {
			return err
		}
		r.TransitionImageLayout(img.Image, vk.ImageLayoutShaderReadOnlyOptimal)

		scb, err := r.End()
		if err != nil {
			return err
		}

		fence, err := p.Device.CreateFence()
		if err != nil {
			return err
		}
		defer fence.Destroy()

		sub, err := queue.SubmitTracked(fence, scb)
		if err != nil {
			return err
		}
		return sub.Wait()
	}

	if err := upload(); err != nil {
		img.Free()
		return nil, err
	}
	return img, nil
}
