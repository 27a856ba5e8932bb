// Package pdf renders the site documents (site report, PPSPS, prevention plan,
// hot-work permit, installation plan, risk register) with maroto.
// Every generator returns the finished file as bytes.
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/tidwall/gjson"

	"github.com/diewo77/go-chantiers/internal/logging"
)

// ImagePlaceholder replaces a picture that could not be fetched.
const ImagePlaceholder = "[image indisponible]"

const (
	charsPerLine = 95
	lineHeight   = 5.0
)

var (
	accent     = &props.Color{Red: 230, Green: 126, Blue: 34}
	headingBg  = &props.Color{Red: 236, Green: 240, Blue: 243}
	mutedColor = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// Generator builds documents. Images are fetched through images; a nil fetcher
// renders placeholders.
type Generator struct {
	images ImageFetcher
	now    func() time.Time
}

// NewGenerator returns a generator using images for remote pictures.
func NewGenerator(images ImageFetcher) *Generator {
	return &Generator{images: images, now: time.Now}
}

// doc wraps a maroto document with the few building blocks every template uses.
type doc struct {
	ctx context.Context
	m   core.Maroto
	gen *Generator
}

func (g *Generator) newDoc(ctx context.Context, title, subtitle string) (*doc, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)
	footer := text.NewRow(6, "Généré le "+g.now().Format("02/01/2006 15:04"), props.Text{
		Size: 7, Align: align.Right, Color: mutedColor, Top: 2,
	})
	if err := m.RegisterFooter(footer); err != nil {
		return nil, fmt.Errorf("pdf footer: %w", err)
	}
	d := &doc{ctx: ctx, m: m, gen: g}
	d.m.AddRows(
		text.NewRow(12, title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center, Color: accent}),
	)
	if subtitle != "" {
		d.m.AddRows(text.NewRow(8, subtitle, props.Text{Size: 11, Align: align.Center}))
	}
	d.m.AddRows(line.NewRow(4))
	return d, nil
}

func (d *doc) bytes() ([]byte, error) {
	out, err := d.m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf generate: %w", err)
	}
	return out.GetBytes(), nil
}

// section writes a shaded heading.
func (d *doc) section(title string) {
	d.m.AddRows(row.New(3))
	d.m.AddRows(
		row.New(8).Add(
			text.NewCol(12, title, props.Text{Size: 11, Style: fontstyle.Bold, Top: 1.5, Left: 2}),
		).WithStyle(&props.Cell{BackgroundColor: headingBg}),
	)
}

// fields writes label/value pairs, two columns wide. Empty values print a dash.
func (d *doc) fields(pairs ...[2]string) {
	for _, p := range pairs {
		value := strings.TrimSpace(p[1])
		if value == "" {
			value = "-"
		}
		d.m.AddRows(row.New(textHeight(value, 60)).Add(
			text.NewCol(4, p[0], props.Text{Size: 9, Style: fontstyle.Bold, Top: 1}),
			text.NewCol(8, value, props.Text{Size: 9, Top: 1}),
		))
	}
}

// paragraph writes free text sized to its content.
func (d *doc) paragraph(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	d.m.AddRows(row.New(textHeight(s, charsPerLine)).Add(
		col.New(12).Add(text.New(s, props.Text{Size: 9, Top: 1})),
	))
}

// image embeds a remote picture at full content width, or the placeholder line.
func (d *doc) image(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	if d.gen.images != nil {
		data, ext, err := d.gen.images.Fetch(d.ctx, url)
		if err == nil {
			d.m.AddRows(row.New(70).Add(
				image.NewFromBytesCol(12, data, ext, props.Rect{Center: true, Percent: 95}),
			))
			return
		}
		logging.FromContext(d.ctx).WithError(err).WithField("url", url).Warn("pdf image skipped")
	}
	d.m.AddRows(text.NewRow(6, ImagePlaceholder, props.Text{Size: 8, Style: fontstyle.Italic, Color: mutedColor}))
}

// json renders an opaque payload as indented key/value lines.
func (d *doc) json(label string, raw []byte) {
	lines := flattenJSON(raw)
	if len(lines) == 0 {
		return
	}
	d.m.AddRows(text.NewRow(6, label, props.Text{Size: 9, Style: fontstyle.Bold, Top: 1}))
	d.paragraph(strings.Join(lines, "\n"))
}

func flattenJSON(raw []byte) []string {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil
	}
	var out []string
	var walk func(prefix string, v gjson.Result)
	walk = func(prefix string, v gjson.Result) {
		switch {
		case v.IsObject() || v.IsArray():
			isArray := v.IsArray()
			v.ForEach(func(k, item gjson.Result) bool {
				key := k.String()
				if isArray {
					key = "-"
				}
				if item.IsObject() || item.IsArray() {
					out = append(out, prefix+key)
					walk(prefix+"  ", item)
				} else {
					out = append(out, prefix+key+" "+scalar(item))
				}
				return true
			})
		case v.Type == gjson.Null:
		default:
			out = append(out, prefix+scalar(v))
		}
	}
	walk("", gjson.ParseBytes(raw))
	return out
}

func scalar(v gjson.Result) string {
	switch v.Type {
	case gjson.True:
		return "oui"
	case gjson.False:
		return "non"
	case gjson.Null:
		return "-"
	default:
		return v.String()
	}
}

func textHeight(s string, perLine int) float64 {
	lines := 0
	for _, l := range strings.Split(s, "\n") {
		lines += 1 + len([]rune(l))/perLine
	}
	return float64(lines)*lineHeight + 2
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func yesNo(b bool) string {
	if b {
		return "Oui"
	}
	return "Non"
}
