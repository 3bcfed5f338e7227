package itemize

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pipeline", func() {
	var (
		cfg    Config
		input  []RecognizedLine
		result Result
	)

	BeforeEach(func() {
		cfg = Config{}
		input = lines("001 콜라 500ml", "02", "002 사이다 1.5l", "03")
	})

	JustBeforeEach(func() {
		result = New(cfg).Run(input)
	})

	When("names and quantities are interleaved", func() {
		It("should produce one item per product", func() {
			Expect(result.Items).To(Equal([]LineItem{
				{Name: "콜라", Weight: "500", Unit: "ml", Quantity: "02"},
				{Name: "사이다", Weight: "1.5", Unit: "l", Quantity: "03"},
			}))
		})

		It("should expose the intermediate stages", func() {
			Expect(result.Lines).To(HaveLen(4))
			Expect(result.Groups).To(HaveLen(4))
			Expect(result.Candidates).To(HaveLen(4))
			Expect(result.Tokens).To(Equal([]string{"콜라 500ml", "02", "사이다 1.5l", "03"}))
			Expect(result.Names).To(Equal([]string{"콜라 500ml", "사이다 1.5l"}))
			Expect(result.Quantities).To(Equal([]string{"02", "03"}))
		})
	})

	When("the receipt has noise around the items", func() {
		BeforeEach(func() {
			input = lines(
				"이마트 성수점",
				"TEL 0212345678",
				"001 콜라 500ml",
				"02",
				"1,800",
				"002 사이다 1.5l",
				"03",
				"합계 3.600 원",
				"8801234567890",
			)
		})

		It("should ignore everything but the item lines", func() {
			Expect(result.Items).To(HaveLen(2))
			Expect(result.Items[0].Name).To(Equal("콜라"))
			Expect(result.Items[1].Name).To(Equal("사이다"))
		})
	})

	When("a quantity is missing", func() {
		BeforeEach(func() {
			input = lines("001 콜라 500ml", "02", "002 사이다 1.5l", "003 바나나")
		})

		It("should default the trailing quantity", func() {
			Expect(result.Items).To(HaveLen(3))
			Expect(result.Items[2]).To(Equal(LineItem{Name: "바나나", Weight: "0", Unit: UnitNone, Quantity: "1"}))
		})
	})

	When("the legacy profile is selected", func() {
		BeforeEach(func() {
			cfg.Profile = ProfileLegacy
			input = lines("001 바나나", "02")
		})

		It("should use the legacy unit sentinel", func() {
			Expect(result.Items).To(Equal([]LineItem{{Name: "바나나", Weight: "0", Unit: "EA", Quantity: "02"}}))
		})
	})

	When("the legacy half-split classifier is used", func() {
		BeforeEach(func() {
			cfg.Classifier = HalfSplit{}
		})

		When("all names precede all quantities", func() {
			BeforeEach(func() {
				input = lines("001 콜라 500ml", "002 사이다 1.5l", "02", "03")
			})

			It("should agree with the leading-digit classifier", func() {
				Expect(result.Items).To(Equal(New(Config{}).Run(input).Items))
			})
		})

		When("names and quantities are interleaved", func() {
			It("should mispair the items", func() {
				Expect(result.Items).To(Equal([]LineItem{
					{Name: "콜라", Weight: "500", Unit: "ml", Quantity: "사이다 1.5l"},
				}))
			})
		})
	})

	When("the pairing strategy is replaced", func() {
		BeforeEach(func() {
			cfg.Pairer = reversePairer{}
		})

		It("should leave the other stages untouched", func() {
			Expect(result.Items).To(HaveLen(2))
			Expect(result.Items[0].Quantity).To(Equal("03"))
			Expect(result.Items[0].Weight).To(Equal("500"))
		})
	})

	When("there are no lines", func() {
		BeforeEach(func() {
			input = nil
		})

		It("should return an empty result", func() {
			Expect(result.Groups).To(BeEmpty())
			Expect(result.Items).NotTo(BeNil())
			Expect(result.Items).To(BeEmpty())
		})

		It("should encode items as an empty JSON array", func() {
			b, err := json.Marshal(result.Items)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal("[]"))
		})
	})

	It("should encode items with the count key", func() {
		b, err := json.Marshal(result.Items[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(MatchJSON(`{"name":"콜라","weight":"500","unit":"ml","count":"02"}`))
	})
})

var _ = DescribeTable("ProfileByName",
	func(name string, expected Profile, fails bool) {
		p, err := ProfileByName(name)
		if fails {
			Expect(err).To(HaveOccurred())
			return
		}
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(expected))
	},
	Entry("empty", "", ProfileDefault, false),
	Entry("default", "default", ProfileDefault, false),
	Entry("legacy", "legacy", ProfileLegacy, false),
	Entry("unknown", "ea", Profile{}, true),
)

type reversePairer struct{}

func (reversePairer) Pair(items []LineItem, quantities []string) []LineItem {
	out := make([]LineItem, 0, len(items))
	for i, item := range items {
		item.Quantity = DefaultQuantity
		if j := len(quantities) - 1 - i; j >= 0 {
			item.Quantity = quantities[j]
		}
		out = append(out, item)
	}
	return out
}
