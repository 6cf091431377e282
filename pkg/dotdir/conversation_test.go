package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/novostroy/pkg/dotdir"
)

var _ = Describe("dotdir.Manager conversation", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadConversation", func() {
		It("returns nil when no conversation was saved", func() {
			state, err := m.LoadConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("loads a valid conversation state", func() {
			data := `{"city_id":"msk","messages":[{"role":"user","content":"двушка"},{"role":"assistant","content":"Нашла 2 ЖК."}],"complex_ids":["11","42"]}`
			err := os.WriteFile(filepath.Join(tmpDir, "conversation.json"), []byte(data), 0o600)
			Expect(err).NotTo(HaveOccurred())

			state, err := m.LoadConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).NotTo(BeNil())
			Expect(state.CityID).To(Equal("msk"))
			Expect(state.Messages).To(HaveLen(2))
			Expect(state.Messages[0].Role).To(Equal("user"))
			Expect(state.Messages[1].Content).To(Equal("Нашла 2 ЖК."))
			Expect(state.ComplexIDs).To(Equal([]string{"11", "42"}))
		})

		It("returns error for invalid JSON", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "conversation.json"), []byte("not json"), 0o600)
			Expect(err).NotTo(HaveOccurred())

			state, err := m.LoadConversation(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(state).To(BeNil())
		})
	})

	Describe("SaveConversation", func() {
		It("round-trips through LoadConversation", func() {
			state := &dotdir.ConversationState{
				Messages: []dotdir.ConversationMessage{
					{Role: "assistant", Content: "Привет!"},
					{Role: "user", Content: "студия до 6 млн"},
				},
				ComplexIDs: []string{"7"},
			}
			Expect(m.SaveConversation(state, tmpDir)).To(Succeed())

			loaded, err := m.LoadConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Messages).To(Equal(state.Messages))
			Expect(loaded.ComplexIDs).To(Equal([]string{"7"}))
			Expect(loaded.UpdatedAt).To(BeTemporally("~", time.Now(), time.Minute))
		})

		It("rejects a nil state", func() {
			Expect(m.SaveConversation(nil, tmpDir)).To(HaveOccurred())
		})
	})

	Describe("ClearConversation", func() {
		It("removes a saved conversation", func() {
			Expect(m.SaveConversation(&dotdir.ConversationState{}, tmpDir)).To(Succeed())
			Expect(m.ClearConversation(tmpDir)).To(Succeed())

			state, err := m.LoadConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("is a no-op when nothing was saved", func() {
			Expect(m.ClearConversation(tmpDir)).To(Succeed())
		})
	})
})
