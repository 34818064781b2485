package export_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"masm/pkg/export"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

var _ = Describe("Buffer", func() {
	var buf *export.Buffer

	BeforeEach(func() {
		buf = export.NewBuffer()
	})

	It("should start empty", func() {
		Expect(buf.Entries()).To(BeEmpty())
		Expect(buf.Externals()).To(BeEmpty())
	})

	It("should keep entries and externals apart, in queue order", func() {
		buf.AddEntry("MAIN", 100)
		buf.AddExternal("PRINT", 104)
		buf.AddExternal("PRINT", 112)
		buf.AddEntry("STR", 120)

		Expect(buf.Entries()).To(Equal([]export.Record{{"MAIN", 100}, {"STR", 120}}))
		Expect(buf.Externals()).To(Equal([]export.Record{{"PRINT", 104}, {"PRINT", 112}}))
		Expect(buf.Len()).To(Equal(4))
	})

	It("should drop everything on reset", func() {
		buf.AddEntry("MAIN", 100)
		buf.AddExternal("X", 100)

		buf.Reset()

		Expect(buf.Len()).To(BeZero())
		Expect(buf.Entries()).To(BeEmpty())
		Expect(buf.Externals()).To(BeEmpty())
	})
})

var _ = Describe("WriteListing", func() {
	It("should write zero-padded addresses", func() {
		var out bytes.Buffer

		err := export.WriteListing(&out, []export.Record{{"K", 7}, {"LOOP", 1024}})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(Equal("K 0007\nLOOP 1024\n"))
	})

	It("should write nothing for no records", func() {
		var out bytes.Buffer

		Expect(export.WriteListing(&out, nil)).To(Succeed())
		Expect(out.Len()).To(BeZero())
	})

	It("should return writer errors", func() {
		err := export.WriteListing(failingWriter{}, []export.Record{{"K", 7}})

		Expect(err).To(MatchError("disk full"))
	})
})
