package registry_test

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"zvaintel/internal/pkg/registry"
	"zvaintel/internal/pkg/terms"
	"zvaintel/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const baseURL = "https://registry.test/permissions"

// fakeRenderer serves canned HTML or errors by page number.
type fakeRenderer struct {
	mu      sync.Mutex
	pages   map[int]string
	errs    map[int]error
	visited []int
}

func (f *fakeRenderer) Navigate(_ context.Context, pageURL string, wait registry.WaitCondition, _ time.Duration) (*registry.Page, error) {
	u, err := url.Parse(pageURL)
	Expect(err).NotTo(HaveOccurred())
	n, err := strconv.Atoi(u.Query().Get("page"))
	Expect(err).NotTo(HaveOccurred())

	f.mu.Lock()
	f.visited = append(f.visited, n)
	f.mu.Unlock()

	if err := f.errs[n]; err != nil {
		return nil, err
	}
	html, ok := f.pages[n]
	if !ok {
		return nil, fmt.Errorf("no page %d", n)
	}
	page, err := registry.NewPage(pageURL, strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	if !page.Has(wait) {
		return nil, registry.ErrTableNotFound
	}
	return page, nil
}

func singleRowPage(drug, wholesaler string) string {
	return fmt.Sprintf(`<table id="permissions"><tbody><tr>
		<td>%s</td><td>Ibuprofenum</td><td>Reckitt Benckiser, Lielbritānija</td><td>M01AE01</td><td>%s</td><td>MRP</td><td>Beztermiņa</td>
	</tr></tbody></table>`, drug, wholesaler)
}

func newExtractor(r registry.Renderer) *registry.Extractor {
	e, err := registry.NewExtractor(r, terms.New(terms.Default()), registry.Config{BaseURL: baseURL})
	Expect(err).NotTo(HaveOccurred())
	return e
}

var _ = Describe("Extractor", func() {
	It("keeps going when page 2 of 3 times out", func() {
		r := &fakeRenderer{
			pages: map[int]string{
				1: testhelpers.MustLoadFixture("registry_page1.html"),
				3: singleRowPage("Nurofen 200 mg mīkstās kapsulas N111111-11", `SIA "Magnum Medical", Rīga, L00051`),
			},
			errs: map[int]error{2: fmt.Errorf("%w: %s?page=2", registry.ErrNavigationTimeout, baseURL)},
		}

		res := newExtractor(r).Extract(context.Background(), registry.Options{MaxPages: 5})

		Expect(res.Pages).To(Equal(3))
		Expect(res.PagesFailed).To(Equal(1))
		Expect(res.Errors).To(HaveLen(1))
		Expect(res.Errors[0]).To(ContainSubstring("page 2"))
		Expect(res.Errors[0]).To(ContainSubstring("timed out"))

		regs := []string{}
		for _, rec := range res.Records {
			regs = append(regs, rec.RegistrationNumber)
		}
		Expect(regs).To(Equal([]string{"N123456-01", "N000123-04", "N222222-22", "N111111-11"}))
		Expect(res.Records[3].SourcePage).To(Equal(3))
		Expect(res.Records[0].WholesalerName).To(Equal("Pharma Plus"))
		Expect(res.Records[0].WholesalerAddress).To(Equal("Riga, LV-1010"))
	})

	It("logs one error per short row and keeps the rest", func() {
		r := &fakeRenderer{pages: map[int]string{1: testhelpers.MustLoadFixture("registry_page3.html")}}

		res := newExtractor(r).Extract(context.Background(), registry.Options{MaxPages: 1})

		Expect(res.Records).To(HaveLen(1))
		Expect(res.Dropped).To(Equal(1))
		Expect(res.Errors).To(HaveLen(1))
		Expect(res.Errors[0]).To(ContainSubstring("too few cells"))
		Expect(r.visited).To(Equal([]int{1}))
	})

	It("drops rows failing validation", func() {
		r := &fakeRenderer{pages: map[int]string{1: testhelpers.MustLoadFixture("registry_plain.html")}}

		res := newExtractor(r).Extract(context.Background(), registry.Options{})

		Expect(res.Records).To(HaveLen(1))
		Expect(res.Records[0].DrugName).To(Equal("Aspirin Cardio"))
		Expect(res.Records[0].WholesalerName).To(Equal("Baltic Pharma"))
		Expect(res.Records[0].WholesalerLicense).To(Equal("LPN-12/345"))
		Expect(res.Dropped).To(Equal(1))
		Expect(res.Errors[0]).To(ContainSubstring("validation"))
	})

	It("collapses duplicate registration numbers, later pages winning", func() {
		r := &fakeRenderer{pages: map[int]string{
			1: testhelpers.MustLoadFixture("registry_page1.html"),
			2: singleRowPage("Paracetamol 500mg tablet N123456-01", "SIA Tamro, Rīga, L00012"),
			3: singleRowPage("Nurofen 200 mg mīkstās kapsulas N111111-11", "SIA Tamro, Rīga, L00012"),
		}}

		res := newExtractor(r).Extract(context.Background(), registry.Options{})

		Expect(res.Errors).To(BeEmpty())
		Expect(res.Records).To(HaveLen(4))
		Expect(res.Records[0].RegistrationNumber).To(Equal("N123456-01"))
		Expect(res.Records[0].WholesalerName).To(Equal("Tamro"))
		Expect(res.Records[0].SourcePage).To(Equal(2))
	})

	It("never visits more than MaxPages", func() {
		r := &fakeRenderer{pages: map[int]string{1: testhelpers.MustLoadFixture("registry_page1.html")}}

		res := newExtractor(r).Extract(context.Background(), registry.Options{MaxPages: 1})

		Expect(res.Pages).To(Equal(1))
		Expect(res.Records).To(HaveLen(3))
		Expect(r.visited).To(Equal([]int{1}))
	})

	It("tries up to MaxPages when the first page fails", func() {
		r := &fakeRenderer{
			pages: map[int]string{2: singleRowPage("Nurofen 200 mg mīkstās kapsulas N111111-11", "SIA Tamro, Rīga, L00012")},
			errs:  map[int]error{1: registry.ErrTableNotFound},
		}

		res := newExtractor(r).Extract(context.Background(), registry.Options{MaxPages: 2})

		Expect(res.Records).To(HaveLen(1))
		Expect(res.PagesFailed).To(Equal(1))
		Expect(res.Errors).To(ConsistOf(ContainSubstring("page 1")))
	})

	It("spaces page starts by the delay", func() {
		r := &fakeRenderer{pages: map[int]string{
			1: testhelpers.MustLoadFixture("registry_page1.html"),
			2: singleRowPage("A 1 mg tablete N100000-01", "Tamro, Rīga"),
			3: singleRowPage("B 1 mg tablete N100000-02", "Tamro, Rīga"),
		}}

		start := time.Now()
		res := newExtractor(r).Extract(context.Background(), registry.Options{Delay: 50 * time.Millisecond})

		Expect(res.Errors).To(BeEmpty())
		Expect(time.Since(start)).To(BeNumerically(">=", 100*time.Millisecond))
	})

	It("reports a cancelled context as page errors", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := &fakeRenderer{pages: map[int]string{1: testhelpers.MustLoadFixture("registry_page1.html")}}
		res := newExtractor(r).Extract(ctx, registry.Options{MaxPages: 1, Delay: time.Second})

		Expect(res.Records).To(BeEmpty())
		Expect(res.Errors).To(HaveLen(1))
	})

	DescribeTable("rejects invalid configuration",
		func(r registry.Renderer, norm *terms.Normalizer, base string) {
			_, err := registry.NewExtractor(r, norm, registry.Config{BaseURL: base})
			Expect(err).To(MatchError(registry.ErrInvalidConfig))
		},
		Entry("nil renderer", nil, terms.New(terms.Default()), baseURL),
		Entry("nil normalizer", &fakeRenderer{}, nil, baseURL),
		Entry("empty url", &fakeRenderer{}, terms.New(terms.Default()), ""),
	)
})
