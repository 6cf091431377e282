// Package storagetest holds the behavior every storage.Driver must share,
// as Ginkgo specs that each driver's suite runs against its own backend.
package storagetest

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/novostroy/pkg/catalog"
	"github.com/papercomputeco/novostroy/pkg/storage"
)

func price(v int64) *int64 {
	return &v
}

// Fixtures is a small catalog across two cities.
func Fixtures() *catalog.Fixtures {
	return &catalog.Fixtures{
		Cities: []catalog.City{
			{ID: "msk", Name: "Москва", Slug: "moskva"},
			{ID: "spb", Name: "Санкт-Петербург", Slug: "spb"},
		},
		Developers: []catalog.Developer{
			{ID: "dev-1", Name: "Гранель", Slug: "granel", Rating: 4.6, CityID: "msk"},
		},
		Complexes: []catalog.Complex{
			{
				ID: "11", Name: "ЖК Сосны", Slug: "sosny", District: "Зеленоград",
				PriceFrom: price(7_900_000), PriceTo: price(15_400_000),
				CompletionDate: "4 кв. 2026", Features: []string{"парковка", "лес рядом"},
				DeveloperID: "dev-1", CityID: "msk", Rating: 4.8, ReviewsCount: 2, IsFeatured: true,
			},
			{
				ID: "42", Name: "ЖК Речной", Slug: "rechnoy", District: "Нагатино",
				PriceFrom: price(11_200_000), DeveloperID: "dev-1", CityID: "msk", Rating: 4.5,
			},
			{
				ID: "7", Name: "ЖК Северная долина", Slug: "severnaya-dolina",
				CityID: "spb", Rating: 4.2,
			},
			{
				ID: "8", Name: "ЖК Аврора", Slug: "avrora", CityID: "msk", Rating: 4.5,
			},
		},
		Apartments: []catalog.Apartment{
			{ID: "a-2", ComplexID: "11", Rooms: 3, Area: 80, Price: 15_000_000, IsAvailable: false},
			{ID: "a-1", ComplexID: "11", Rooms: 2, Area: 54.5, Floor: 3, TotalFloors: 5, Price: 9_800_000, IsAvailable: true},
		},
		Reviews: []catalog.Review{
			{ID: "r-1", ComplexID: "11", AuthorName: "Анна", Rating: 5, Text: "Тихо", IsVerified: true,
				CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
			{ID: "r-2", ComplexID: "11", AuthorName: "Игорь", Rating: 4,
				CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
		},
	}
}

// DescribeDriver registers the shared driver specs. newDriver is called
// before each test and must return an empty store; it may Skip.
func DescribeDriver(newDriver func() storage.Driver) {
	var (
		d   storage.Driver
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		d = newDriver()

		_, err := storage.Seed(ctx, d, Fixtures())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if d != nil {
			Expect(d.Close()).To(Succeed())
		}
	})

	Describe("ListComplexes", func() {
		It("orders by rating, then name", func() {
			complexes, err := d.ListComplexes(ctx, storage.ComplexFilter{})
			Expect(err).NotTo(HaveOccurred())

			ids := make([]string, 0, len(complexes))
			for _, c := range complexes {
				ids = append(ids, c.ID)
			}
			Expect(ids).To(Equal([]string{"11", "8", "42", "7"}))
		})

		It("filters by city", func() {
			complexes, err := d.ListComplexes(ctx, storage.ComplexFilter{CityID: "spb"})
			Expect(err).NotTo(HaveOccurred())
			Expect(complexes).To(HaveLen(1))
			Expect(complexes[0].Name).To(Equal("ЖК Северная долина"))
		})

		It("returns an empty list for an unknown city", func() {
			complexes, err := d.ListComplexes(ctx, storage.ComplexFilter{CityID: "nowhere"})
			Expect(err).NotTo(HaveOccurred())
			Expect(complexes).To(BeEmpty())
		})

		It("attaches developers", func() {
			complexes, err := d.ListComplexes(ctx, storage.ComplexFilter{CityID: "msk"})
			Expect(err).NotTo(HaveOccurred())
			Expect(complexes[0].Developer).NotTo(BeNil())
			Expect(complexes[0].Developer.Name).To(Equal("Гранель"))
			Expect(complexes[1].Developer).To(BeNil())
		})
	})

	Describe("GetComplex", func() {
		It("round-trips every field", func() {
			c, err := d.GetComplex(ctx, "11")
			Expect(err).NotTo(HaveOccurred())

			Expect(c.Name).To(Equal("ЖК Сосны"))
			Expect(c.District).To(Equal("Зеленоград"))
			Expect(*c.PriceFrom).To(Equal(int64(7_900_000)))
			Expect(*c.PriceTo).To(Equal(int64(15_400_000)))
			Expect(c.CompletionDate).To(Equal("4 кв. 2026"))
			Expect(c.Features).To(Equal([]string{"парковка", "лес рядом"}))
			Expect(c.Rating).To(BeNumerically("~", 4.8))
			Expect(c.ReviewsCount).To(Equal(2))
			Expect(c.IsFeatured).To(BeTrue())
			Expect(c.Developer.Slug).To(Equal("granel"))
		})

		It("keeps missing prices nil", func() {
			c, err := d.GetComplex(ctx, "7")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.PriceFrom).To(BeNil())
			Expect(c.PriceTo).To(BeNil())
		})

		It("returns NotFoundError for unknown ids", func() {
			_, err := d.GetComplex(ctx, "missing")
			Expect(err).To(MatchError(storage.NotFoundError{Kind: "complex", ID: "missing"}))
		})

		It("replaces a complex on a second put", func() {
			c, err := d.GetComplex(ctx, "42")
			Expect(err).NotTo(HaveOccurred())

			c.Rating = 5
			c.Features = []string{"набережная"}
			Expect(d.PutComplex(ctx, *c)).To(Succeed())

			updated, err := d.GetComplex(ctx, "42")
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Rating).To(BeNumerically("~", 5))
			Expect(updated.Features).To(Equal([]string{"набережная"}))
		})
	})

	Describe("GetComplexes", func() {
		It("preserves the requested order and skips unknown ids", func() {
			complexes, err := d.GetComplexes(ctx, []string{"42", "missing", "11", "42"})
			Expect(err).NotTo(HaveOccurred())

			Expect(complexes).To(HaveLen(2))
			Expect(complexes[0].ID).To(Equal("42"))
			Expect(complexes[1].ID).To(Equal("11"))
		})

		It("returns an empty list for no ids", func() {
			complexes, err := d.GetComplexes(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(complexes).To(BeEmpty())
		})
	})

	Describe("ListApartments", func() {
		It("orders by price", func() {
			apartments, err := d.ListApartments(ctx, "11")
			Expect(err).NotTo(HaveOccurred())

			Expect(apartments).To(HaveLen(2))
			Expect(apartments[0].ID).To(Equal("a-1"))
			Expect(apartments[0].Area).To(BeNumerically("~", 54.5))
			Expect(apartments[0].IsAvailable).To(BeTrue())
			Expect(apartments[1].IsAvailable).To(BeFalse())
		})
	})

	Describe("ListReviews", func() {
		It("orders newest first", func() {
			reviews, err := d.ListReviews(ctx, "11")
			Expect(err).NotTo(HaveOccurred())

			Expect(reviews).To(HaveLen(2))
			Expect(reviews[0].ID).To(Equal("r-2"))
			Expect(reviews[1].IsVerified).To(BeTrue())
			Expect(reviews[1].CreatedAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))).To(BeTrue())
		})

		It("returns an empty list for a complex without reviews", func() {
			reviews, err := d.ListReviews(ctx, "42")
			Expect(err).NotTo(HaveOccurred())
			Expect(reviews).To(BeEmpty())
		})
	})

	Describe("searches", func() {
		It("records searches and lists them newest first", func() {
			base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			for i, q := range []string{"первый", "второй", "третий"} {
				Expect(d.RecordSearch(ctx, storage.SearchRecord{
					ID:         q,
					Query:      q,
					CityID:     "msk",
					Content:    "ответ [IDS: 11]",
					Display:    "ответ",
					ComplexIDs: []string{"11"},
					Fragments:  3,
					Recovered:  1,
					Duration:   1500 * time.Millisecond,
					CreatedAt:  base.Add(time.Duration(i) * time.Minute),
				})).To(Succeed())
			}

			searches, err := d.ListSearches(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			Expect(searches).To(HaveLen(2))
			Expect(searches[0].Query).To(Equal("третий"))
			Expect(searches[1].Query).To(Equal("второй"))
			Expect(searches[0].ComplexIDs).To(Equal([]string{"11"}))
			Expect(searches[0].Duration).To(Equal(1500 * time.Millisecond))
			Expect(searches[0].Recovered).To(Equal(1))
			Expect(searches[0].CreatedAt.Equal(base.Add(2 * time.Minute))).To(BeTrue())
		})

		It("applies the default limit", func() {
			Expect(d.RecordSearch(ctx, storage.SearchRecord{ID: "s", Query: "q"})).To(Succeed())

			searches, err := d.ListSearches(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(searches).To(HaveLen(1))
			Expect(searches[0].CreatedAt.IsZero()).To(BeFalse())
		})
	})
}
