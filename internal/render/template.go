package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/stacklok/forward-slots/internal/forwarding"
)

// Template parses text as a text/template and returns a producer that executes
// it with the producer arguments as data. Execution errors are rendered inline.
func Template(name, text string) (forwarding.Producer, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template for channel %q: %w", name, err)
	}

	return func(args any) any {
		var b strings.Builder
		if err := tmpl.Execute(&b, args); err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return b.String()
	}, nil
}

// Templates builds a ChannelMap from name -> template text
func Templates(texts map[string]string) (forwarding.ChannelMap, error) {
	if texts == nil {
		return nil, nil
	}

	channels := make(forwarding.ChannelMap, len(texts))
	for name, text := range texts {
		producer, err := Template(name, text)
		if err != nil {
			return nil, err
		}
		channels[name] = producer
	}
	return channels, nil
}
