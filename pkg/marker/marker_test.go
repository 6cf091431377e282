package marker_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/novostroy/pkg/marker"
)

var _ = Describe("Marker", func() {
	DescribeTable("ExtractIDs",
		func(text string, want []string) {
			Expect(marker.ExtractIDs(text)).To(Equal(want))
		},
		Entry("plural keyword", "Готово [IDS: 11, 42]", []string{"11", "42"}),
		Entry("singular keyword", "[ID: 7]", []string{"7"}),
		Entry("lowercase keyword", "[ids: a,b]", []string{"a", "b"}),
		Entry("mixed case keyword", "[Ids:x]", []string{"x"}),
		Entry("order and duplicates are preserved", "[IDS: b, a, a]", []string{"b", "a", "a"}),
		Entry("empty tokens are dropped", "[IDS: , 1,, 2 ,]", []string{"1", "2"}),
		Entry("uuid identifiers", "[IDS: 3f0c9a5e-1b2c-4d5e-8f90-a1b2c3d4e5f6]", []string{"3f0c9a5e-1b2c-4d5e-8f90-a1b2c3d4e5f6"}),
		Entry("only the first marker is used", "[IDS: 1] and [IDS: 2]", []string{"1"}),
		Entry("payload spans a newline", "[IDS: 1,\n2]", []string{"1", "2"}),
		Entry("no marker", "просто текст", nil),
		Entry("missing closing bracket", "[IDS: 1, 2", nil),
		Entry("missing colon", "[IDS 1, 2]", nil),
		Entry("empty payload", "[IDS:]", nil),
		Entry("whitespace-only payload", "[IDS:   ]", nil),
		Entry("other keyword", "[REF: 1]", nil),
	)

	DescribeTable("Clean",
		func(text, want string) {
			Expect(marker.Clean(text)).To(Equal(want))
		},
		Entry("trailing marker", "Нашла для вас 2 варианта. [IDS: 11, 42]", "Нашла для вас 2 варианта."),
		Entry("marker in the middle", "до [ID: 1] после", "до  после"),
		Entry("every marker is removed", "[IDS: 1] a [ids: 2] b [Id: 3]", "a  b"),
		Entry("no marker", "  текст  ", "текст"),
		Entry("unterminated marker is kept", "текст [IDS: 1", "текст [IDS: 1"),
		Entry("nested marker pieces", "x [ID[IDS: 1]S: 2] y", "x  y"),
	)

	It("is idempotent", func() {
		inputs := []string{
			"Нашла для вас 2 варианта. [IDS: 11, 42]",
			"x [ID[IDS: 1]S: 2] y",
			"[IDS: 1]",
			"  plain  ",
			"",
		}
		for _, in := range inputs {
			once := marker.Clean(in)
			Expect(marker.Clean(once)).To(Equal(once), "input %q", in)
			Expect(marker.Has(once)).To(BeFalse())
		}
	})

	It("parses display text and identifiers together", func() {
		display, ids := marker.Parse("Рекомендую ЖК «Лесной». [IDS: 5]")
		Expect(display).To(Equal("Рекомендую ЖК «Лесной»."))
		Expect(ids).To(Equal([]string{"5"}))
	})
})
