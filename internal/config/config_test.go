package config_test

import (
	"os"
	"time"

	"zvaintel/internal/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var keys = []string{
	"REGISTRY_URL", "REGISTRY_RENDERER", "REGISTRY_TIMEOUT", "REGISTRY_PAGE_DELAY", "REGISTRY_WORKERS",
	"REGISTRY_MAX_PAGES", "REGISTRY_PAGE_SIZE", "SEARCH_TIMEOUT", "SEARCH_DELAY", "SEARCH_LLM",
	"GOOGLE_API_KEY", "GOOGLE_CX", "PORT",
}

var _ = Describe("LoadConfig", func() {
	saved := map[string]*string{}

	BeforeEach(func() {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok {
				saved[k] = &v
			} else {
				saved[k] = nil
			}
			Expect(os.Unsetenv(k)).To(Succeed())
		}
	})

	AfterEach(func() {
		for k, v := range saved {
			if v == nil {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, *v)
			}
		}
	})

	It("has working defaults", func() {
		cfg, err := config.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.RegistryRenderer).To(Equal(config.RendererHTTP))
		Expect(cfg.RegistryTimeout).To(Equal(30 * time.Second))
		Expect(cfg.RegistryPageDelay).To(Equal(2 * time.Second))
		Expect(cfg.RegistryWorkers).To(Equal(2))
		Expect(cfg.SearchTimeout).To(Equal(10 * time.Second))
		Expect(cfg.SearchLLM).To(BeTrue())
		Expect(cfg.Port).To(Equal("8080"))
		Expect(cfg.Validate()).To(Succeed())
	})

	It("reads durations as Go durations or milliseconds", func() {
		os.Setenv("REGISTRY_PAGE_DELAY", "1500")
		os.Setenv("SEARCH_DELAY", "250ms")

		cfg, err := config.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.RegistryPageDelay).To(Equal(1500 * time.Millisecond))
		Expect(cfg.SearchDelay).To(Equal(250 * time.Millisecond))
	})

	DescribeTable("rejects malformed values",
		func(key, value string) {
			os.Setenv(key, value)
			_, err := config.LoadConfig()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(HavePrefix(key))
		},
		Entry("workers", "REGISTRY_WORKERS", "two"),
		Entry("timeout", "REGISTRY_TIMEOUT", "soon"),
		Entry("flag", "SEARCH_LLM", "maybe"),
	)

	DescribeTable("Validate",
		func(key, value, message string) {
			os.Setenv(key, value)
			cfg, err := config.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Validate()).To(MatchError(ContainSubstring(message)))
		},
		Entry("relative URL", "REGISTRY_URL", "registry/page", "REGISTRY_URL"),
		Entry("unknown renderer", "REGISTRY_RENDERER", "selenium", "REGISTRY_RENDERER"),
		Entry("no workers", "REGISTRY_WORKERS", "0", "REGISTRY_WORKERS"),
		Entry("half google config", "GOOGLE_API_KEY", "key", "GOOGLE_CX"),
	)
})
