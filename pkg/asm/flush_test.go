package asm

import (
	"bytes"
	"errors"
	"io"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"masm/pkg/config"
)

type closingBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closingBuffer) Close() error {
	b.closed = true
	return nil
}

type failingWriter struct{ closed bool }

func (w *failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (w *failingWriter) Close() error {
	w.closed = true
	return nil
}

var _ = Describe("Flush", func() {
	var (
		mockCtrl *gomock.Controller
		out      *MockOutputCreator
		a        *Assembler
		files    map[string]*closingBuffer
	)

	assemble := func(code string) *Result {
		res, err := a.AssembleFile(bytes.NewReader([]byte(code)))
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	expectCreate := func(suffix string) {
		buf := &closingBuffer{}
		files[suffix] = buf
		out.EXPECT().Create(suffix).Return(buf, nil)
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		out = NewMockOutputCreator(mockCtrl)
		files = map[string]*closingBuffer{}

		var err error
		a, err = NewAssembler(config.Default(), io.Discard)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		a.Close()
		mockCtrl.Finish()
	})

	It("should write only the object when nothing is exported", func() {
		res := assemble(".db 1,2,3")
		expectCreate(".ob")

		Expect(a.Flush(res, out)).To(Succeed())
		Expect(files[".ob"].String()).To(Equal("0 3\n0100 01 02 03\n"))
		Expect(files[".ob"].closed).To(BeTrue())
	})

	It("should write the listings before the object", func() {
		res := assemble(".extern W\n.entry MAIN\nMAIN: jmp W\nla W\n")
		gomock.InOrder(
			out.EXPECT().Create(".ext").DoAndReturn(func(string) (io.WriteCloser, error) {
				files[".ext"] = &closingBuffer{}
				return files[".ext"], nil
			}),
			out.EXPECT().Create(".ent").DoAndReturn(func(string) (io.WriteCloser, error) {
				files[".ent"] = &closingBuffer{}
				return files[".ent"], nil
			}),
			out.EXPECT().Create(".ob").DoAndReturn(func(string) (io.WriteCloser, error) {
				files[".ob"] = &closingBuffer{}
				return files[".ob"], nil
			}),
		)

		Expect(a.Flush(res, out)).To(Succeed())
		Expect(files[".ext"].String()).To(Equal("W 0100\nW 0104\n"))
		Expect(files[".ent"].String()).To(Equal("MAIN 0100\n"))
		Expect(files[".ob"].String()).To(Equal("8 0\n0100 00 00 00 78\n0104 00 00 00 7C\n"))
	})

	It("should skip an empty externals listing", func() {
		res := assemble(".entry D\nD: .dh 513\n")
		expectCreate(".ent")
		expectCreate(".ob")

		Expect(a.Flush(res, out)).To(Succeed())
		Expect(files[".ent"].String()).To(Equal("D 0100\n"))
	})

	It("should use the configured suffixes", func() {
		cfg := config.Default()
		cfg.ObjectSuffix = ".obj"
		cfg.BytesPerRow = 2
		var err error
		a, err = NewAssembler(cfg, io.Discard)
		Expect(err).NotTo(HaveOccurred())

		res := assemble(".db 1,2,3")
		expectCreate(".obj")

		Expect(a.Flush(res, out)).To(Succeed())
		Expect(files[".obj"].String()).To(Equal("0 3\n0100 01 02\n0102 03\n"))
	})

	It("should not create anything for a failed file", func() {
		res := assemble("X: stop\nX: stop")

		Expect(a.Flush(res, out)).NotTo(Succeed())
	})

	It("should report creation failures", func() {
		res := assemble("stop")
		out.EXPECT().Create(".ob").Return(nil, errors.New("permission denied"))

		err := a.Flush(res, out)
		Expect(err).To(MatchError(ContainSubstring("permission denied")))
	})

	It("should close an output that could not be written", func() {
		res := assemble("stop")
		w := &failingWriter{}
		out.EXPECT().Create(".ob").Return(w, nil)

		Expect(a.Flush(res, out)).To(MatchError(ContainSubstring("disk full")))
		Expect(w.closed).To(BeTrue())
	})
})
