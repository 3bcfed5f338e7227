package itemize

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Collect", func() {
	var (
		input     []RecognizedLine
		threshold float64
		groups    []LineGroup
		kept      []RecognizedLine
	)

	BeforeEach(func() {
		threshold = DefaultGroupThreshold
	})

	JustBeforeEach(func() {
		groups, kept = Collect(input, threshold)
	})

	When("two lines are exactly the threshold apart", func() {
		BeforeEach(func() {
			input = []RecognizedLine{{Text: "a", TopY: 100}, {Text: "b", TopY: 110}}
		})

		It("should put them in the same group", func() {
			Expect(groups).To(HaveLen(1))
			Expect(groups[0]).To(HaveLen(2))
		})
	})

	When("two lines are one pixel beyond the threshold", func() {
		BeforeEach(func() {
			input = []RecognizedLine{{Text: "a", TopY: 100}, {Text: "b", TopY: 111}}
		})

		It("should start a new group", func() {
			Expect(groups).To(HaveLen(2))
		})
	})

	When("a row drifts further than the threshold from its first line", func() {
		BeforeEach(func() {
			input = []RecognizedLine{
				{Text: "a", TopY: 0},
				{Text: "b", TopY: 8},
				{Text: "c", TopY: 16},
			}
		})

		It("should compare against the anchor, not the previous line", func() {
			Expect(groups).To(HaveLen(2))
			Expect(groups[0]).To(HaveLen(2))
			Expect(groups[1][0].Text).To(Equal("c"))
		})
	})

	When("lines arrive out of order", func() {
		BeforeEach(func() {
			input = []RecognizedLine{
				{Text: "third", TopY: 300},
				{Text: "first", TopY: 100},
				{Text: "second-a", TopY: 200},
				{Text: "second-b", TopY: 200},
			}
		})

		It("should order groups by ascending anchor", func() {
			Expect(groups).To(HaveLen(3))
			for i := 1; i < len(groups); i++ {
				Expect(groups[i].Anchor()).To(BeNumerically(">", groups[i-1].Anchor()))
			}
		})

		It("should keep the input order of lines with equal TopY", func() {
			Expect(groups[1][0].Text).To(Equal("second-a"))
			Expect(groups[1][1].Text).To(Equal("second-b"))
		})

		It("should return the sorted flat list", func() {
			Expect(kept).To(HaveLen(4))
			Expect(kept[0].Text).To(Equal("first"))
			Expect(kept[3].Text).To(Equal("third"))
		})
	})

	When("the input contains noise", func() {
		BeforeEach(func() {
			input = []RecognizedLine{
				{Text: "880123456789", TopY: 10},
				{Text: "TEL 0212345678", TopY: 20},
				{Text: "1,234", TopY: 30},
				{Text: "합계 12.345", TopY: 40},
				{Text: "001 콜라 500ml", TopY: 50},
			}
		})

		It("should drop barcodes, phone numbers and prices", func() {
			Expect(kept).To(HaveLen(1))
			Expect(kept[0].Text).To(Equal("001 콜라 500ml"))
		})

		It("should never group a dropped line", func() {
			Expect(groups).To(HaveLen(1))
			Expect(groups[0]).To(ConsistOf(RecognizedLine{Text: "001 콜라 500ml", TopY: 50}))
		})
	})

	When("there is no input", func() {
		BeforeEach(func() {
			input = nil
		})

		It("should return empty, non-nil results", func() {
			Expect(groups).NotTo(BeNil())
			Expect(groups).To(BeEmpty())
			Expect(kept).NotTo(BeNil())
			Expect(kept).To(BeEmpty())
		})
	})

	It("should never produce an empty group", func() {
		groups, _ = Collect(lines("a", "b", "c", "d"), DefaultGroupThreshold)
		for _, g := range groups {
			Expect(g).NotTo(BeEmpty())
		}
	})
})

var _ = DescribeTable("IsNoise",
	func(text string, noise bool) {
		Expect(IsNoise(text)).To(Equal(noise))
	},
	Entry("12-digit barcode", "880123456789", true),
	Entry("10-digit run", "0101234567", true),
	Entry("9-digit run", "010123456", false),
	Entry("thousands separator", "1,234", true),
	Entry("dotted thousands inside a line", "합계 12.345 원", true),
	Entry("price glued to a suffix", "1,234원", false),
	Entry("decimal litre weight", "002 사이다 1.5l", false),
	Entry("plain item", "001 콜라 500ml", false),
)

var _ = Describe("SelectQuantityLines", func() {
	It("should keep only short leading numbers without commas", func() {
		selected := SelectQuantityLines(lines(
			"001 콜라 500ml",
			"02",
			"001P콜라",
			"12345",
			"콜라 02",
			"01 1,000",
			"123 콜라",
			"3",
		))
		texts := make([]string, 0, len(selected))
		for _, l := range selected {
			texts = append(texts, l.Text)
		}
		Expect(texts).To(Equal([]string{"001 콜라 500ml", "02", "001P콜라", "3"}))
	})

	It("should exclude a barcode once noise is filtered", func() {
		_, kept := Collect(lines("880123456789", "02"), DefaultGroupThreshold)
		selected := SelectQuantityLines(kept)
		Expect(selected).To(HaveLen(1))
		Expect(selected[0].Text).To(Equal("02"))
	})
})
