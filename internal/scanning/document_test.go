package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-items/internal/itemize"
)

var _ = Describe("Document", func() {
	Describe("Lines", func() {
		It("should flatten blocks in order", func() {
			doc := &Document{Blocks: []Block{
				{Lines: []Line{{Text: "a", Frame: &Frame{Left: 1, Top: 10, Width: 5, Height: 6}}}},
				{Lines: []Line{{Text: "b"}, {Text: "c", Frame: &Frame{Top: 30}}}},
			}}

			Expect(doc.Lines()).To(Equal([]itemize.RecognizedLine{
				{Text: "a", TopY: 10, Box: &itemize.BoundingBox{Left: 1, Top: 10, Width: 5, Height: 6}},
				{Text: "b"},
				{Text: "c", TopY: 30, Box: &itemize.BoundingBox{Top: 30}},
			}))
			Expect(doc.LineCount()).To(Equal(3))
		})

		It("should handle a nil document", func() {
			var doc *Document
			Expect(doc.Lines()).To(BeEmpty())
			Expect(doc.LineCount()).To(BeZero())
		})
	})
})

var _ = Describe("DecodeDocument", func() {
	It("should accept ML Kit output with extra properties", func() {
		doc, err := DecodeDocument([]byte(`{
			"text": "001 콜라 500ml\n02",
			"blocks": [{
				"text": "001 콜라 500ml\n02",
				"frame": {"left": 0, "top": 0, "width": 400, "height": 60},
				"cornerPoints": [{"x": 0, "y": 0}],
				"recognizedLanguages": ["ko"],
				"lines": [
					{"text": "001 콜라 500ml", "frame": {"left": 0, "top": 0, "width": 300, "height": 20}, "elements": []},
					{"text": "02", "frame": {"left": 0, "top": 30, "width": 20, "height": 20}}
				]
			}]
		}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.LineCount()).To(Equal(2))
	})

	It("should accept an empty document", func() {
		doc, err := DecodeDocument([]byte(`{"blocks": []}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Lines()).To(BeEmpty())
	})

	DescribeTable("accepting documents with missing structure",
		func(body string, lineCount int) {
			doc, err := DecodeDocument([]byte(body))
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.LineCount()).To(Equal(lineCount))
		},
		Entry("empty object", `{}`, 0),
		Entry("null", `null`, 0),
		Entry("missing blocks", `{"text": "x"}`, 0),
		Entry("null blocks", `{"blocks": null}`, 0),
		Entry("block without lines", `{"blocks": [{}]}`, 0),
		Entry("line without text", `{"blocks": [{"lines": [{"frame": {"top": 1}}]}]}`, 1),
		Entry("frame without top", `{"blocks": [{"lines": [{"text": "a", "frame": {"left": 1}}]}]}`, 1),
	)

	DescribeTable("rejecting malformed documents",
		func(body string) {
			_, err := DecodeDocument([]byte(body))
			Expect(err).To(HaveOccurred())
		},
		Entry("not JSON", `nope`),
		Entry("not an object", `[]`),
		Entry("blocks not an array", `{"blocks": "x"}`),
		Entry("text not a string", `{"blocks": [{"lines": [{"text": 12}]}]}`),
		Entry("negative height", `{"blocks": [{"lines": [{"text": "a", "frame": {"top": 1, "height": -2}}]}]}`),
	)
})
