package proxy

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/novostroy/pkg/catalog"
	"github.com/papercomputeco/novostroy/pkg/llm"
)

var _ = Describe("Prompt", func() {
	price := int64(7_500_000)
	complexes := []catalog.Complex{
		{
			ID:        "11",
			Name:      "ЖК Сосны & Ели",
			Slug:      "sosny",
			District:  "Кунцево",
			PriceFrom: &price,
			Rating:    4.8,
			Developer: &catalog.Developer{ID: "dev-1", Name: "Гранель"},
		},
	}

	Describe("BuildSystemPrompt", func() {
		DescribeTable("budget and rooms",
			func(budget, rooms any, wantBudget, wantRooms string) {
				prompt, err := BuildSystemPrompt(nil, budget, rooms)
				Expect(err).NotTo(HaveOccurred())
				Expect(prompt).To(ContainSubstring("бюджет (" + wantBudget + ")"))
				Expect(prompt).To(ContainSubstring("количество комнат (" + wantRooms + ")"))
			},
			Entry("absent", nil, nil, "не указан", "не указано"),
			Entry("whole number", float64(8), float64(2), "до 8 млн ₽", "2"),
			Entry("fractional budget", 7.5, "студия", "до 7.5 млн ₽", "студия"),
			Entry("zero and empty are absent", float64(0), "", "не указан", "не указано"),
			Entry("string budget", "10", nil, "до 10 млн ₽", "не указано"),
		)

		It("embeds the complexes as indented JSON without HTML escaping", func() {
			prompt, err := BuildSystemPrompt(catalog.PromptEntries(complexes), nil, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(prompt).To(ContainSubstring("Доступные жилые комплексы:\n[\n  {\n    \"id\": \"11\""))
			Expect(prompt).To(ContainSubstring(`"name": "ЖК Сосны & Ели"`))
			Expect(prompt).To(ContainSubstring(`"priceFrom": 7500000`))
			Expect(prompt).To(ContainSubstring(`"priceTo": null`))
			Expect(prompt).To(ContainSubstring(`"features": []`))
			Expect(prompt).To(ContainSubstring(`"developer": "Гранель"`))
		})

		It("renders an empty catalog as an empty list", func() {
			prompt, err := BuildSystemPrompt(nil, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt).To(ContainSubstring("Доступные жилые комплексы:\n[]\n"))
		})

		It("asks for the identifier marker", func() {
			prompt, err := BuildSystemPrompt(nil, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt).To(ContainSubstring("[IDS: id1, id2, id3]"))
		})
	})

	Describe("BuildChatRequest", func() {
		It("streams a system and a user message", func() {
			req, err := BuildChatRequest(DefaultModel, complexes, SearchRequest{Query: "тихий район"})
			Expect(err).NotTo(HaveOccurred())

			Expect(req.Model).To(Equal(DefaultModel))
			Expect(req.Stream).To(BeTrue())
			Expect(req.Messages).To(HaveLen(2))
			Expect(req.Messages[0].Role).To(Equal(llm.RoleSystem))
			Expect(req.Messages[1]).To(Equal(llm.NewTextMessage(llm.RoleUser, "тихий район")))
		})

		It("defaults an empty query", func() {
			req, err := BuildChatRequest(DefaultModel, nil, SearchRequest{})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Messages[1].Content).To(Equal(DefaultQuery))
		})

		It("decodes numeric and string request fields", func() {
			var sr SearchRequest
			Expect(json.Unmarshal([]byte(`{"query":"q","cityId":"msk","budget":8,"rooms":"2"}`), &sr)).To(Succeed())

			req, err := BuildChatRequest(DefaultModel, nil, sr)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Messages[0].Content).To(ContainSubstring("бюджет (до 8 млн ₽), количество комнат (2)"))
		})
	})
})
