package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/onsi/gomega"
)

// WriteFile writes content to dir/name and returns the path
func WriteFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	gomega.Expect(os.WriteFile(path, []byte(content), 0600)).To(gomega.Succeed())
	return path
}

// WriteConfigYAML writes a server configuration with an optional default
// manifest path
func WriteConfigYAML(dir, manifestPath string) string {
	content := "address: 127.0.0.1:0\n"
	if manifestPath != "" {
		content += fmt.Sprintf("manifest: %s\n", manifestPath)
	}
	return WriteFile(dir, "config.yaml", content)
}

// ExampleManifest is the wrapper scenario used across the suite: a parent
// with prepend, default and append channels and two inner components
const ExampleManifest = `only: ["default", "/ONE$/i"]
attrs:
  foo: bar
args: world
slots:
  prepend: "Before the world"
  prepend.one: "One"
  prepend.two: "Two"
  default: "Hello {{.}}"
  append: "After the world"
targets:
  - name: Inner
    props: [foo]
  - name: Second
`
