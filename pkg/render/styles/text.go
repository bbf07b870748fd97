package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/layout"
)

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Points formats a polygon point list.
func Points(pts []layout.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

// DominantBaseline maps a label baseline to the SVG attribute value.
func DominantBaseline(b layout.Baseline) string {
	switch b {
	case layout.BaselineTop:
		return "hanging"
	case layout.BaselineBottom:
		return "text-after-edge"
	default:
		return "central"
	}
}

// IntentAttrs renders the data attributes a host script reads to turn a
// click into a selection.
func IntentAttrs(in *intent.Intent) string {
	if in == nil {
		return ""
	}
	return fmt.Sprintf(` data-intent="%s" data-dim="%d" data-id="%s"`, in.Kind, in.DimensionIndex, in.ElemID)
}

// BarTitle is the hover text of a bar.
func BarTitle(b layout.Bar) string {
	if b.Series == "" || b.Series == b.Group {
		return fmt.Sprintf("%s: %g", b.Group, b.Value)
	}
	return fmt.Sprintf("%s / %s: %g", b.Group, b.Series, b.Value)
}
