package image_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"masm/pkg/image"
)

var _ = Describe("Image", func() {
	var img *image.Image

	BeforeEach(func() {
		img = image.New(0)
	})

	It("should accumulate declared sizes per segment", func() {
		img.Extend(image.Code, image.Word)
		img.Extend(image.Code, image.Word)
		img.Extend(image.Data, image.Byte)
		img.Extend(image.Data, image.Half)

		Expect(img.Size(image.Code)).To(Equal(8))
		Expect(img.Size(image.Data)).To(Equal(3))
		Expect(img.Offset(image.Code)).To(Equal(0))
	})

	It("should write little-endian bytes after commit", func() {
		img.Extend(image.Code, image.Word)
		img.Extend(image.Data, image.Half)
		Expect(img.Commit()).To(Succeed())

		img.Write(image.Code, 0x0A0B0C0D, image.Word)
		img.Write(image.Data, -2, image.Half)

		Expect(img.Bytes(image.Code)).To(Equal([]byte{0x0D, 0x0C, 0x0B, 0x0A}))
		Expect(img.Bytes(image.Data)).To(Equal([]byte{0xFE, 0xFF}))
		Expect(img.Byte(image.Code, 3)).To(Equal(byte(0x0A)))
		Expect(img.Offset(image.Code)).To(Equal(4))
		Expect(img.Full()).To(BeTrue())
	})

	It("should keep only the low-order bytes of wide values", func() {
		img.Extend(image.Data, image.Byte)
		Expect(img.Commit()).To(Succeed())

		img.Write(image.Data, 0x1FF, image.Byte)

		Expect(img.Bytes(image.Data)).To(Equal([]byte{0xFF}))
	})

	It("should leave empty segments unallocated", func() {
		img.Extend(image.Data, image.Byte)
		Expect(img.Commit()).To(Succeed())

		Expect(img.Bytes(image.Code)).To(BeNil())
		Expect(img.Bytes(image.Data)).To(HaveLen(1))
	})

	It("should panic when emission outgrows discovery", func() {
		img.Extend(image.Code, image.Word)
		Expect(img.Commit()).To(Succeed())
		img.Write(image.Code, 1, image.Word)

		Expect(func() { img.Write(image.Code, 1, image.Word) }).To(Panic())
	})

	It("should report partially written images as not full", func() {
		img.Extend(image.Code, image.Word)
		img.Extend(image.Code, image.Word)
		Expect(img.Commit()).To(Succeed())
		img.Write(image.Code, 1, image.Word)

		Expect(img.Full()).To(BeFalse())
	})

	It("should reset sizes and buffers", func() {
		img.Extend(image.Code, image.Word)
		Expect(img.Commit()).To(Succeed())
		img.Write(image.Code, 7, image.Word)

		img.Reset()

		Expect(img.Size(image.Code)).To(Equal(0))
		Expect(img.Offset(image.Code)).To(Equal(0))
		Expect(img.Bytes(image.Code)).To(BeNil())
	})

	Context("with a byte limit", func() {
		BeforeEach(func() {
			img = image.New(6)
		})

		It("should roll back when the data segment does not fit", func() {
			img.Extend(image.Code, image.Word)
			img.Extend(image.Data, image.Word)

			err := img.Commit()

			Expect(err).To(MatchError(image.ErrImageTooLarge))
			Expect(img.Bytes(image.Code)).To(BeNil())
			Expect(img.Bytes(image.Data)).To(BeNil())
		})

		It("should commit images within the limit", func() {
			img.Extend(image.Code, image.Word)
			img.Extend(image.Data, image.Half)

			Expect(img.Commit()).To(Succeed())
		})
	})
})
