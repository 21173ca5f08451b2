package integration

import (
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/forward-slots/internal/service"
	"github.com/stacklok/forward-slots/test-integration/forwarding-api/helpers"
)

var _ = Describe("Forwarding API", Label("api"), func() {
	var (
		tempDir      string
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("forward-api-test-")
	})

	AfterEach(func() {
		if serverHelper != nil {
			Expect(serverHelper.StopServer()).To(Succeed())
			serverHelper = nil
		}
		cleanupTempDir(tempDir)
	})

	Context("with a default manifest", func() {
		BeforeEach(func() {
			manifestPath := helpers.WriteFile(tempDir, "manifest.yaml", helpers.ExampleManifest)
			configFile := helpers.WriteConfigYAML(tempDir, manifestPath)

			serverHelper = helpers.NewServerTestHelper(ctx, configFile)
			Expect(serverHelper.StartServer()).To(Succeed())
			serverHelper.WaitForServerReady(10 * time.Second)
		})

		It("should forward the selected channels to every target", func() {
			resp, err := serverHelper.GetForward()
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result service.ForwardResult
			helpers.DecodeJSON(resp, &result)

			Expect(result.PassID).NotTo(BeEmpty())
			Expect(result.Nodes).To(HaveLen(2))
			for _, node := range result.Nodes {
				Expect(node.Channels).To(Equal(map[string]string{
					"default":     "Hello world",
					"prepend.one": "One",
				}))
				Expect(node.Attrs).To(HaveKeyWithValue("foo", "bar"))
			}
			Expect(result.Warnings).To(ConsistOf(`extraneous attribute "foo" passed to component "Second"`))
		})

		It("should give every pass its own id", func() {
			var first, second service.ForwardResult

			resp, err := serverHelper.GetForward()
			Expect(err).NotTo(HaveOccurred())
			helpers.DecodeJSON(resp, &first)

			resp, err = serverHelper.GetForward()
			Expect(err).NotTo(HaveOccurred())
			helpers.DecodeJSON(resp, &second)

			Expect(first.PassID).NotTo(Equal(second.PassID))
		})

		It("should run posted manifests instead of the default", func() {
			resp, err := serverHelper.PostForward(map[string]any{
				"inheritAttrs": false,
				"attrs":        map[string]any{"foo": "bar"},
				"slots":        map[string]string{"default": "Posted"},
				"targets":      []map[string]any{{"name": "Only"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result service.ForwardResult
			helpers.DecodeJSON(resp, &result)
			Expect(result.Nodes).To(HaveLen(1))
			Expect(result.Nodes[0].Target).To(Equal("Only"))
			Expect(result.Nodes[0].Channels).To(Equal(map[string]string{"default": "Posted"}))
			Expect(result.Nodes[0].Attrs).To(BeEmpty())
			Expect(result.Warnings).To(BeEmpty())
		})

		It("should reject invalid manifests", func() {
			resp, err := serverHelper.PostForward(map[string]any{
				"only":    "/a/g",
				"targets": []map[string]any{{"name": "Inner"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			var body map[string]string
			helpers.DecodeJSON(resp, &body)
			Expect(body["error"]).To(ContainSubstring("invalid pattern"))
		})

		It("should reject manifests with unknown fields", func() {
			resp, err := serverHelper.PostForward(map[string]any{
				"targets": []map[string]any{{"name": "Inner"}},
				"slotz":   map[string]string{"default": "typo"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			_ = resp.Body.Close()
		})
	})

	Context("with a remote default manifest", func() {
		var manifestServer *httptest.Server

		BeforeEach(func() {
			manifestServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/yaml")
				_, _ = w.Write([]byte(helpers.ExampleManifest))
			}))
			configFile := helpers.WriteConfigYAML(tempDir, manifestServer.URL+"/manifest.yaml")

			serverHelper = helpers.NewServerTestHelper(ctx, configFile)
			Expect(serverHelper.StartServer()).To(Succeed())
			serverHelper.WaitForServerReady(10 * time.Second)
		})

		AfterEach(func() {
			manifestServer.Close()
		})

		It("should serve the fetched manifest", func() {
			resp, err := serverHelper.GetForward()
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result service.ForwardResult
			helpers.DecodeJSON(resp, &result)
			Expect(result.Nodes).To(HaveLen(2))
			Expect(result.Nodes[0].Target).To(Equal("Inner"))
		})
	})

	Context("without a default manifest", func() {
		BeforeEach(func() {
			configFile := helpers.WriteConfigYAML(tempDir, "")

			serverHelper = helpers.NewServerTestHelper(ctx, configFile)
			Expect(serverHelper.StartServer()).To(Succeed())
			serverHelper.WaitForServerReady(10 * time.Second)
		})

		It("should report that no manifest is configured", func() {
			resp, err := serverHelper.GetForward()
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			_ = resp.Body.Close()
		})
	})
})
