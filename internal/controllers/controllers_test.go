package controllers_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"zvaintel/internal/controllers"
	"zvaintel/internal/db"
	"zvaintel/internal/models"
	"zvaintel/internal/pkg/aggregator"
	"zvaintel/internal/pkg/export"
	"zvaintel/internal/routes"
	"zvaintel/internal/tasks"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

type fakeLister struct {
	records []models.RegistryRecord
	err     error
	filters []db.RecordFilter
}

func (f *fakeLister) ListRegistryRecords(_ context.Context, filter db.RecordFilter) ([]models.RegistryRecord, error) {
	f.filters = append(f.filters, filter)
	return f.records, f.err
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: "default", Type: task.Type()}, nil
}

type fakeResearcher struct {
	result *models.VendorIntelligence
	errs   []string
	names  []string
}

func (f *fakeResearcher) Research(_ context.Context, name, _, _ string) (*models.VendorIntelligence, []string) {
	f.names = append(f.names, name)
	return f.result, f.errs
}

type fakeSearcher struct {
	requests []aggregator.Request
}

func (f *fakeSearcher) Search(_ context.Context, req aggregator.Request) aggregator.Result {
	f.requests = append(f.requests, req)
	return aggregator.Result{
		Candidates:  []models.VendorCandidate{{CompanyName: "Tamro", Source: "google", Confidence: 0.8}},
		Insights:    "Found 1 potential suppliers",
		DataQuality: aggregator.QualityLow,
		Sources:     []string{"google"},
		Errors:      []string{},
	}
}

type fakeMatcher struct {
	substance, dosageForm string
}

func (f *fakeMatcher) Match(_ context.Context, substance, dosageForm string) ([]models.SupplierMatch, []string) {
	f.substance, f.dosageForm = substance, dosageForm
	return []models.SupplierMatch{{WholesalerName: "Tamro SIA", Drugs: []models.DrugEntry{{DrugName: "Ibumetin"}}}}, nil
}

func serve(router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &out)).To(Succeed())
	return out
}

var _ = Describe("API", func() {
	var (
		lister     *fakeLister
		queue      *fakeQueue
		researcher *fakeResearcher
		searcher   *fakeSearcher
		matcher    *fakeMatcher
		router     *gin.Engine
	)

	BeforeEach(func() {
		lister = &fakeLister{records: []models.RegistryRecord{{
			DrugName:           "Ibumetin",
			RegistrationNumber: "N123456-01",
			ActiveIngredient:   "Ibuprofenum",
			WholesalerName:     "Tamro SIA",
		}}}
		queue = &fakeQueue{}
		researcher = &fakeResearcher{result: &models.VendorIntelligence{
			VendorName:     "Magnum Medical",
			ResearchStatus: models.ResearchCompleted,
		}}
		searcher = &fakeSearcher{}
		matcher = &fakeMatcher{}

		router = routes.SetupRouter(routes.Controllers{
			Registry:  &controllers.RegistryController{Records: lister, Queue: queue},
			Vendors:   &controllers.VendorController{Researcher: researcher, Searcher: searcher, Queue: queue},
			Suppliers: &controllers.SupplierController{Matcher: matcher},
		})
	})

	It("reports health and sets a request id", func() {
		w := serve(router, http.MethodGet, "/health", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w)).To(HaveKeyWithValue("status", "UP"))
		Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty())
	})

	Describe("registry", func() {
		It("queues an extraction with defaults", func() {
			w := serve(router, http.MethodPost, "/api/v1/registry/extract", "")
			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(decode(w)).To(HaveKeyWithValue("task_id", "task-1"))
			Expect(queue.tasks).To(HaveLen(1))
			Expect(queue.tasks[0].Type()).To(Equal(tasks.TypeTaskExtractRegistry))
		})

		It("passes overrides through the payload", func() {
			w := serve(router, http.MethodPost, "/api/v1/registry/extract", `{"max_pages": 3}`)
			Expect(w.Code).To(Equal(http.StatusAccepted))

			var p tasks.ExtractRegistryPayload
			Expect(json.Unmarshal(queue.tasks[0].Payload(), &p)).To(Succeed())
			Expect(p.MaxPages).NotTo(BeNil())
			Expect(*p.MaxPages).To(Equal(3))
			Expect(p.PageSize).To(BeNil())
		})

		It("rejects invalid overrides", func() {
			w := serve(router, http.MethodPost, "/api/v1/registry/extract", `{"max_pages": 0}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(queue.tasks).To(BeEmpty())
		})

		It("returns 500 when the queue fails", func() {
			queue.err = errors.New("redis down")
			w := serve(router, http.MethodPost, "/api/v1/registry/extract", "")
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(w)).To(HaveKeyWithValue("error", "Something went wrong"))
		})

		It("lists records with filters and paging", func() {
			w := serve(router, http.MethodGet, "/api/v1/registry/records?substance=ibu&limit=5&offset=10", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["records"]).To(HaveLen(1))
			Expect(lister.filters).To(ConsistOf(db.RecordFilter{Substance: "ibu", Limit: 5, Offset: 10}))
		})

		It("falls back to the default limit on bad input", func() {
			serve(router, http.MethodGet, "/api/v1/registry/records?limit=abc", "")
			Expect(lister.filters[0].Limit).To(Equal(db.DefaultListLimit))
		})

		It("hides store errors", func() {
			lister.err = errors.New("connection refused")
			w := serve(router, http.MethodGet, "/api/v1/registry/records", "")
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).NotTo(ContainSubstring("connection refused"))
		})

		It("exports CSV as an attachment", func() {
			w := serve(router, http.MethodGet, "/api/v1/registry/export.csv", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
			Expect(w.Header().Get("Content-Disposition")).To(MatchRegexp(`attachment; filename=registry_\d{8}\.csv`))

			rows, err := csv.NewReader(w.Body).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0]).To(Equal(export.Header))
		})

		It("exports an XLSX workbook", func() {
			w := serve(router, http.MethodGet, "/api/v1/registry/export.xlsx", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()
			rows, err := f.GetRows(export.SheetName)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
		})
	})

	Describe("vendors", func() {
		It("researches a vendor synchronously", func() {
			w := serve(router, http.MethodPost, "/api/v1/vendors/research", `{"vendor_name": "Magnum Medical"}`)
			Expect(w.Code).To(Equal(http.StatusOK))
			body := decode(w)
			Expect(body["intelligence"]).To(HaveKeyWithValue("vendor_name", "Magnum Medical"))
			Expect(body["errors"]).To(BeEmpty())
			Expect(researcher.names).To(ConsistOf("Magnum Medical"))
		})

		It("queues research when async is set", func() {
			w := serve(router, http.MethodPost, "/api/v1/vendors/research", `{"vendor_name": "Magnum Medical", "async": true}`)
			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(queue.tasks).To(HaveLen(1))
			Expect(queue.tasks[0].Type()).To(Equal(tasks.TypeTaskResearchVendor))
			Expect(researcher.names).To(BeEmpty())
		})

		It("requires a vendor name", func() {
			w := serve(router, http.MethodPost, "/api/v1/vendors/research", `{"country": "Latvia"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 422 when research produced nothing", func() {
			researcher.result = nil
			researcher.errs = []string{"vendor name is empty"}
			w := serve(router, http.MethodPost, "/api/v1/vendors/research", `{"vendor_name": "x"}`)
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("binds search parameters from the query string", func() {
			w := serve(router, http.MethodGet, "/api/v1/vendors/search?medicine_name=Ibuprofen&dosage=400mg&country=Latvia&search_depth=3", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(searcher.requests).To(ConsistOf(aggregator.Request{
				MedicineName: "Ibuprofen",
				Dosage:       "400mg",
				Country:      "Latvia",
				SearchDepth:  3,
			}))
			body := decode(w)
			Expect(body["candidates"]).To(HaveLen(1))
			Expect(body).To(HaveKeyWithValue("data_quality", string(aggregator.QualityLow)))
		})

		It("requires a medicine name", func() {
			w := serve(router, http.MethodGet, "/api/v1/vendors/search?country=Latvia", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(searcher.requests).To(BeEmpty())
		})

		It("returns 503 when nothing is configured", func() {
			router = routes.SetupRouter(routes.Controllers{
				Registry:  &controllers.RegistryController{Records: lister},
				Vendors:   &controllers.VendorController{},
				Suppliers: &controllers.SupplierController{Matcher: matcher},
			})
			Expect(serve(router, http.MethodGet, "/api/v1/vendors/search?medicine_name=x", "").Code).To(Equal(http.StatusServiceUnavailable))
			Expect(serve(router, http.MethodPost, "/api/v1/vendors/research", `{"vendor_name": "x"}`).Code).To(Equal(http.StatusServiceUnavailable))
			Expect(serve(router, http.MethodPost, "/api/v1/registry/extract", "").Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("suppliers", func() {
		It("matches by substance and dosage form", func() {
			w := serve(router, http.MethodGet, "/api/v1/suppliers/match?active_substance=ibuprofen&dosage_form=tablet", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(matcher.substance).To(Equal("ibuprofen"))
			Expect(matcher.dosageForm).To(Equal("tablet"))

			body := decode(w)
			Expect(body["matches"]).To(HaveLen(1))
			Expect(body["errors"]).To(BeEmpty())
		})

		It("requires an active substance", func() {
			w := serve(router, http.MethodGet, "/api/v1/suppliers/match?active_substance=%20", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(matcher.substance).To(BeEmpty())
		})
	})
})
