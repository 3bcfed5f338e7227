package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-items/internal/itemize"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
		base   time.Time
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
		base = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveScan", func() {
		var (
			scan *Scan
			err  error
		)

		BeforeEach(func() {
			scan = &Scan{
				ID:        "test-id",
				Source:    SourceDocument,
				Profile:   "default",
				LineCount: 4,
				Items:     []itemize.LineItem{{Name: "콜라", Weight: "500", Unit: "ml", Quantity: "02"}},
				CreatedAt: base,
				UpdatedAt: base,
			}
		})

		JustBeforeEach(func() {
			err = db.SaveScan(scan)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should save the scan to the database", func() {
			saved, getErr := db.GetScan("test-id")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(saved.Items).To(Equal(scan.Items))
			Expect(saved.CreatedAt.Equal(base)).To(BeTrue())
		})

		When("the scan already exists", func() {
			BeforeEach(func() {
				Expect(db.SaveScan(&Scan{ID: "test-id", LineCount: 1})).To(Succeed())
			})

			It("should replace it", func() {
				saved, getErr := db.GetScan("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.LineCount).To(Equal(4))
			})
		})
	})

	Describe("GetScan", func() {
		It("returns a not found error", func() {
			_, err := db.GetScan("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListScans", func() {
		When("scans exist", func() {
			BeforeEach(func() {
				Expect(db.SaveScan(&Scan{ID: "b-old", CreatedAt: base})).To(Succeed())
				Expect(db.SaveScan(&Scan{ID: "a-new", CreatedAt: base.Add(time.Hour)})).To(Succeed())
				Expect(db.SaveScan(&Scan{ID: "c-mid", CreatedAt: base.Add(time.Minute)})).To(Succeed())
			})

			It("should return them newest first", func() {
				scans, err := db.ListScans()
				Expect(err).NotTo(HaveOccurred())
				ids := make([]string, 0, len(scans))
				for _, s := range scans {
					ids = append(ids, s.ID)
				}
				Expect(ids).To(Equal([]string{"a-new", "c-mid", "b-old"}))
			})
		})

		When("no scans exist", func() {
			It("should return an empty list", func() {
				scans, err := db.ListScans()
				Expect(err).NotTo(HaveOccurred())
				Expect(scans).NotTo(BeNil())
				Expect(scans).To(BeEmpty())
			})
		})
	})

	Describe("DeleteScan", func() {
		BeforeEach(func() {
			Expect(db.SaveScan(&Scan{ID: "scan-1"})).To(Succeed())
			Expect(db.SaveScan(&Scan{ID: "scan-2"})).To(Succeed())
			Expect(db.SaveSubmission(&Submission{ID: "sub-1", ScanID: "scan-1"})).To(Succeed())
			Expect(db.SaveSubmission(&Submission{ID: "sub-2", ScanID: "scan-1"})).To(Succeed())
			Expect(db.SaveSubmission(&Submission{ID: "sub-3", ScanID: "scan-2"})).To(Succeed())
		})

		It("should remove the scan and its submissions", func() {
			Expect(db.DeleteScan("scan-1")).To(Succeed())

			_, err := db.GetScan("scan-1")
			Expect(err).To(MatchError(ErrNotFound))

			submissions, err := db.ListSubmissions("scan-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(submissions).To(BeEmpty())
		})

		It("should keep other scans' submissions", func() {
			Expect(db.DeleteScan("scan-1")).To(Succeed())

			submissions, err := db.ListSubmissions("scan-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(submissions).To(HaveLen(1))
		})

		It("returns a not found error", func() {
			Expect(db.DeleteScan("missing")).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListSubmissions", func() {
		BeforeEach(func() {
			Expect(db.SaveSubmission(&Submission{ID: "z", ScanID: "scan-1", CreatedAt: base})).To(Succeed())
			Expect(db.SaveSubmission(&Submission{ID: "a", ScanID: "scan-1", CreatedAt: base.Add(time.Second), Error: "status 502"})).To(Succeed())
		})

		It("should return them oldest first", func() {
			submissions, err := db.ListSubmissions("scan-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(submissions).To(HaveLen(2))
			Expect(submissions[0].ID).To(Equal("z"))
			Expect(submissions[1].Succeeded()).To(BeFalse())
		})
	})

	Describe("NewBoltDB", func() {
		It("should reopen an existing database", func() {
			Expect(db.SaveScan(&Scan{ID: "kept"})).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			_, err = db.GetScan("kept")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
