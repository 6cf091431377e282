package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/novostroy/cmd/novostroy/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
		out     *bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "novostroy-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .novostroy dir so the manager picks it up
		err = os.MkdirAll(filepath.Join(tmpDir, ".novostroy"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			Expect(execute("set", "proxy.model", "google/gemini-2.5-flash")).To(Succeed())

			data, err := os.ReadFile(filepath.Join(tmpDir, ".novostroy", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`model = "google/gemini-2.5-flash"`))
			Expect(out.String()).To(ContainSubstring("proxy.model"))
		})

		It("stores comma separated brokers as a list", func() {
			Expect(execute("set", "eventstream.kafka_brokers", "a:9092, b:9092")).To(Succeed())

			data, err := os.ReadFile(filepath.Join(tmpDir, ".novostroy", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`kafka_brokers = ["a:9092", "b:9092"]`))
		})

		It("rejects unknown keys", func() {
			Expect(execute("set", "invalid_key", "value")).To(HaveOccurred())
		})

		It("requires exactly two arguments", func() {
			Expect(execute("set", "proxy.model")).To(HaveOccurred())
		})

		It("rejects zero arguments", func() {
			Expect(execute("set")).To(HaveOccurred())
		})

		It("rejects invalid uint values", func() {
			Expect(execute("set", "proxy.rate_limit", "not-a-number")).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(execute("set", "client.city_id", "spb")).To(Succeed())

			out.Reset()
			Expect(execute("get", "client.city_id")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("spb"))
		})

		It("reports unset keys", func() {
			Expect(execute("get", "client.city_id")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("get", "invalid_key")).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			Expect(execute("get")).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists defaults when no config exists", func() {
			Expect(execute("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("proxy.gateway_url"))
			Expect(out.String()).To(ContainSubstring(`"https://ai.gateway.lovable.dev"`))
		})

		It("lists values that were set", func() {
			Expect(execute("set", "proxy.rate_limit", "30")).To(Succeed())

			out.Reset()
			Expect(execute("list")).To(Succeed())
			Expect(out.String()).To(MatchRegexp(`proxy\.rate_limit\s+= "30"`))
		})

		It("rejects any arguments", func() {
			Expect(execute("list", "extra")).To(HaveOccurred())
		})
	})
})
