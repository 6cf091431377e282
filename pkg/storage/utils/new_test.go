package storageutils_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/novostroy/pkg/storage/inmemory"
	"github.com/papercomputeco/novostroy/pkg/storage/sqlite"
	storageutils "github.com/papercomputeco/novostroy/pkg/storage/utils"
)

var _ = Describe("NewDriverOpts.Backend", func() {
	DescribeTable("selects one backend",
		func(o storageutils.NewDriverOpts, want string) {
			Expect(o.Backend()).To(Equal(want))
		},
		Entry("nothing set", storageutils.NewDriverOpts{}, storageutils.BackendInMemory),
		Entry("sqlite", storageutils.NewDriverOpts{SQLitePath: "x.db"}, storageutils.BackendSQLite),
		Entry("postgres over sqlite", storageutils.NewDriverOpts{SQLitePath: "x.db", PostgresDSN: "postgres://db"}, storageutils.BackendPostgres),
		Entry("libsql over everything", storageutils.NewDriverOpts{SQLitePath: "x.db", PostgresDSN: "postgres://db", LibSQLURL: "libsql://db"}, storageutils.BackendLibSQL),
	)
})

var _ = Describe("NewDriver", func() {
	ctx := context.Background()

	It("opens an in-memory driver by default", func() {
		driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{})
		Expect(err).NotTo(HaveOccurred())
		Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
		Expect(driver.Close()).To(Succeed())
	})

	It("opens a SQLite driver", func() {
		path := filepath.Join(GinkgoT().TempDir(), "novostroy.db")

		driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{SQLitePath: path})
		Expect(err).NotTo(HaveOccurred())
		Expect(driver).To(BeAssignableToTypeOf(&sqlite.Driver{}))
		Expect(driver.Close()).To(Succeed())
	})

	It("rejects a libSQL URL without a replica path", func() {
		_, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{LibSQLURL: "libsql://novostroy.turso.io"})
		Expect(err).To(MatchError(ContainSubstring("replica path is required")))
	})
})
