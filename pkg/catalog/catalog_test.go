package catalog_test

import (
	"encoding/json"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/novostroy/pkg/catalog"
)

var _ = Describe("LoadFixtures", func() {
	It("loads the example catalog", func() {
		f, err := os.Open("testdata/catalog.yaml")
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		fixtures, err := catalog.LoadFixtures(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(fixtures.Cities).To(HaveLen(2))
		Expect(fixtures.Developers).To(HaveLen(2))
		Expect(fixtures.Complexes).To(HaveLen(3))
		Expect(fixtures.Apartments).To(HaveLen(2))
		Expect(fixtures.Reviews).To(HaveLen(3))

		sosny := fixtures.Complexes[0]
		Expect(sosny.ID).To(Equal("11"))
		Expect(*sosny.PriceFrom).To(Equal(int64(7900000)))
		Expect(sosny.Features).To(ConsistOf("парковка", "детский сад", "лес рядом"))
		Expect(fixtures.Complexes[2].PriceTo).NotTo(BeNil())
	})

	It("accepts an empty document", func() {
		fixtures, err := catalog.LoadFixtures(strings.NewReader(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(fixtures.Complexes).To(BeEmpty())
	})

	DescribeTable("rejects invalid catalogs",
		func(doc, message string) {
			_, err := catalog.LoadFixtures(strings.NewReader(doc))
			Expect(err).To(MatchError(ContainSubstring(message)))
		},
		Entry("unknown key", "complexes:\n  - id: x\n    name: X\n    slug: x\n    colour: red\n", "colour"),
		Entry("complex without slug", "complexes:\n  - id: x\n    name: X\n", "slug are required"),
		Entry("duplicate complex", "complexes:\n  - {id: x, name: X, slug: x}\n  - {id: x, name: Y, slug: y}\n", "duplicate"),
		Entry("unknown city", "complexes:\n  - {id: x, name: X, slug: x, city_id: nowhere}\n", "unknown city"),
		Entry("unknown developer", "complexes:\n  - {id: x, name: X, slug: x, developer_id: d}\n", "unknown developer"),
		Entry("orphan apartment", "apartments:\n  - {id: a, complex_id: x, rooms: 1, area: 30, price: 1, is_available: true}\n", "unknown complex"),
		Entry("review rating out of range", "complexes:\n  - {id: x, name: X, slug: x}\nreviews:\n  - {id: r, complex_id: x, author_name: A, rating: 9}\n", "between 1 and 5"),
	)
})

var _ = Describe("PromptEntries", func() {
	It("reduces complexes with the prompt field names", func() {
		price := int64(7900000)
		entries := catalog.PromptEntries([]catalog.Complex{{
			ID:             "11",
			Name:           "ЖК Сосны",
			Slug:           "sosny",
			District:       "Зеленоград",
			PriceFrom:      &price,
			CompletionDate: "4 кв. 2026",
			Rating:         4.8,
			ReviewsCount:   2,
			Developer:      &catalog.Developer{Name: "Гранель"},
		}})

		data, err := json.Marshal(entries)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(MatchJSON(`[{
			"id": "11",
			"name": "ЖК Сосны",
			"slug": "sosny",
			"district": "Зеленоград",
			"priceFrom": 7900000,
			"priceTo": null,
			"deadline": "4 кв. 2026",
			"rating": 4.8,
			"reviews": 2,
			"features": [],
			"description": "",
			"developer": "Гранель"
		}]`))
	})

	It("returns an empty slice for no complexes", func() {
		Expect(catalog.PromptEntries(nil)).To(BeEmpty())
	})
})

var _ = Describe("Apartment", func() {
	It("computes the price per square meter", func() {
		Expect(catalog.Apartment{Price: 10_000_000, Area: 50}.PricePerSqm()).To(Equal(int64(200_000)))
		Expect(catalog.Apartment{Price: 10_000_000}.PricePerSqm()).To(BeZero())
	})
})
