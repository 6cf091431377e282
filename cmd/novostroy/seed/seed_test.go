package seedcmder_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	seedcmder "github.com/papercomputeco/novostroy/cmd/novostroy/seed"
	"github.com/papercomputeco/novostroy/pkg/storage"
	"github.com/papercomputeco/novostroy/pkg/storage/sqlite"
)

var _ = Describe("NewSeedCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := seedcmder.NewSeedCmd()
		Expect(cmd.Use).To(Equal("seed"))
	})

	It("requires --file", func() {
		cmd := seedcmder.NewSeedCmd()
		f := cmd.Flags().Lookup("file")
		Expect(f).NotTo(BeNil())
		Expect(f.Annotations).To(HaveKey("cobra_annotation_bash_completion_one_required_flag"))
	})
})

var _ = Describe("Seed command execution", func() {
	var (
		tmpDir  string
		catalog string
		out     *bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := seedcmder.NewSeedCmd()
		cmd.Flags().String("config-dir", filepath.Join(tmpDir, ".novostroy"), "")
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}

		var err error
		catalog, err = filepath.Abs(filepath.Join("..", "..", "..", "pkg", "catalog", "testdata", "catalog.yaml"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("seeds the catalog into SQLite", func() {
		dbPath := filepath.Join(tmpDir, "novostroy.db")
		Expect(execute("--file", catalog, "--sqlite", dbPath)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Seeded"))

		driver, err := sqlite.NewDriver(context.Background(), dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer driver.Close()

		complexes, err := driver.ListComplexes(context.Background(), storage.ComplexFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(complexes).NotTo(BeEmpty())
	})

	It("refuses to seed the in-memory store", func() {
		err := execute("--file", catalog)
		Expect(err).To(MatchError(ContainSubstring("persistent store")))
	})

	It("fails for a missing file", func() {
		err := execute("--file", filepath.Join(tmpDir, "missing.yaml"), "--sqlite", filepath.Join(tmpDir, "x.db"))
		Expect(err).To(MatchError(ContainSubstring("opening catalog")))
		_, statErr := os.Stat(filepath.Join(tmpDir, "x.db"))
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})
})
