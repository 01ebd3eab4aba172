// Package device classifies the requesting client so callers can pick the
// fill artifact that suits it.
package device

import (
	"strings"

	"github.com/visaflow/mcp-i765-filler/internal/logging"
)

// Kind is a coarse device class.
type Kind string

const (
	Desktop Kind = "desktop"
	Mobile  Kind = "mobile"
	Tablet  Kind = "tablet"
)

// Variant names which fill artifact suits a device class.
type Variant string

const (
	VariantEditable  Variant = "editable"
	VariantFlattened Variant = "flattened"
)

// RecommendedVariant picks the artifact for a device class. Phones get the
// flattened copy: mobile viewers render static content reliably but form
// editing on them is poor.
func (k Kind) RecommendedVariant() Variant {
	if k == Mobile {
		return VariantFlattened
	}
	return VariantEditable
}

// LocaleKey returns the dictionary key for the class label.
func (k Kind) LocaleKey() string {
	return "device." + string(k)
}

// Width breakpoints used when the user agent gives no signal.
const (
	mobileMaxWidth = 768
	tabletMaxWidth = 1024
)

var tabletTokens = []string{"ipad", "tablet", "kindle", "silk", "playbook"}

var mobileTokens = []string{"iphone", "ipod", "windows phone", "blackberry", "mobi"}

// Detector classifies clients from their user agent and reported screen
// width. It is a constructed dependency, not package state, so hosts can
// swap it in tests.
type Detector struct {
	logger logging.Logger
}

// NewDetector builds a Detector.
func NewDetector(logger logging.Logger) *Detector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Detector{logger: logger}
}

// Classify decides a device class. User-agent tokens win; screen width
// (when positive) breaks the tie; everything else is a desktop. An Android
// agent without the Mobile marker is a tablet per Android's own UA
// convention.
func (d *Detector) Classify(userAgent string, screenWidth int) Kind {
	ua := strings.ToLower(userAgent)

	kind := d.classifyAgent(ua)
	if kind == "" && screenWidth > 0 {
		kind = classifyWidth(screenWidth)
	}
	if kind == "" {
		kind = Desktop
	}

	d.logger.Debug("classified device", map[string]interface{}{
		"kind":         string(kind),
		"screen_width": screenWidth,
	})
	return kind
}

func (d *Detector) classifyAgent(ua string) Kind {
	if ua == "" {
		return ""
	}
	for _, token := range tabletTokens {
		if strings.Contains(ua, token) {
			return Tablet
		}
	}
	if strings.Contains(ua, "android") {
		if strings.Contains(ua, "mobile") {
			return Mobile
		}
		return Tablet
	}
	for _, token := range mobileTokens {
		if strings.Contains(ua, token) {
			return Mobile
		}
	}
	return ""
}

func classifyWidth(width int) Kind {
	switch {
	case width < mobileMaxWidth:
		return Mobile
	case width < tabletMaxWidth:
		return Tablet
	default:
		return Desktop
	}
}
