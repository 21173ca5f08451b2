package integration

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/forward-slots/internal/service"
	"github.com/stacklok/forward-slots/test-integration/forwarding-api/helpers"
)

var _ = Describe("Channel Selection", Label("filtering"), func() {
	var (
		tempDir      string
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("select-api-test-")
		configFile := helpers.WriteConfigYAML(tempDir, "")

		serverHelper = helpers.NewServerTestHelper(ctx, configFile)
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
		cleanupTempDir(tempDir)
	})

	names := []string{"prepend", "prepend.one", "prepend.two", "default", "append", "header"}

	DescribeTable("selecting channels",
		func(req map[string]any, expected []string) {
			req["names"] = names

			resp, err := serverHelper.PostSelect(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result service.SelectResult
			helpers.DecodeJSON(resp, &result)
			Expect(result.Selected).To(Equal(expected))
			Expect(result.Decisions).To(HaveLen(len(names)))
		},
		Entry("no patterns",
			map[string]any{},
			[]string{"prepend", "prepend.one", "prepend.two", "default", "append", "header"}),
		Entry("literal only",
			map[string]any{"only": "default"},
			[]string{"default"}),
		Entry("trailing wildcard",
			map[string]any{"only": "prepend*"},
			[]string{"prepend", "prepend.one", "prepend.two"}),
		Entry("leading wildcard",
			map[string]any{"only": "*.two"},
			[]string{"prepend.two"}),
		Entry("case-insensitive regex",
			map[string]any{"only": []string{"default", "/ONE$/i"}},
			[]string{"prepend.one", "default"}),
		Entry("glob",
			map[string]any{"only": "glob:{append,header}"},
			[]string{"append", "header"}),
		Entry("except",
			map[string]any{"except": "prepend*"},
			[]string{"default", "append", "header"}),
		Entry("except ignored when only is set",
			map[string]any{"only": "default", "except": "default"},
			[]string{"default"}),
		Entry("native bypasses only",
			map[string]any{"only": "default", "native": []string{"header"}},
			[]string{"default", "header"}),
		Entry("filter native",
			map[string]any{"only": "default", "native": []string{"header"}, "filterNative": true},
			[]string{"default"}),
	)

	It("should reject invalid patterns", func() {
		resp, err := serverHelper.PostSelect(map[string]any{"names": names, "only": "/(/"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		_ = resp.Body.Close()
	})
})
