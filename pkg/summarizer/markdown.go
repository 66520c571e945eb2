package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter formats a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) { f.translate = t }
}

// WithVersion sets the version shown in the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) { f.version = v }
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Story Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated At"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(&b, "## %s\n\n", t("Page"))
	writeTable(&b, t, [][2]string{
		{"Page Title", orDash(s.Page.Title)},
		{"Description", orDash(s.Page.Description)},
		{"Host", orDash(s.Page.Host)},
		{"URL", s.Page.URL},
		{"Image URL", orDash(s.Page.ImageURL)},
	})

	if s.Colors.Base != "" {
		fmt.Fprintf(&b, "## %s\n\n", t("Gradient"))
		writeTable(&b, t, [][2]string{
			{"Base Color", s.Colors.Base},
			{"Harmonized Color", s.Colors.Harmonized},
			{"CSS", "`" + s.Colors.CSS + "`"},
		})
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Timing"))
	fonts := formatMs(s.Timing.FontsMs)
	if s.Timing.FontsMs == 0 {
		fonts = t("Preloaded")
	}
	writeTable(&b, t, [][2]string{
		{"Extract", formatMs(s.Timing.ExtractMs)},
		{"Gradient", formatMs(s.Timing.GradientMs)},
		{"Fonts", fonts},
		{"Layout", formatMs(s.Timing.LayoutMs)},
		{"Rasterize", formatMs(s.Timing.RasterizeMs)},
		{"Total", formatMs(s.Timing.TotalMs)},
	})

	if s.Settings.Engine != "" {
		fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
		writeTable(&b, t, [][2]string{
			{"Engine", s.Settings.Engine},
			{"Sampler", orDash(s.Settings.Sampler)},
			{"Font Fallback", orDash(s.Settings.FontFallback)},
			{"Fonts", orDash(strings.Join(s.Settings.Fonts, ", "))},
		})
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Output"))
	writeTable(&b, t, [][2]string{
		{"File", orDash(s.Output.Path)},
		{"Image Size", fmt.Sprintf("%dx%d", s.Output.Width, s.Output.Height)},
		{"File Size", formatBytes(s.Output.FileSize)},
	})

	if f.version != "" {
		fmt.Fprintf(&b, "---\n\nogstory %s\n", f.version)
	}
	return b.String()
}

func writeTable(b *strings.Builder, t func(string) string, rows [][2]string) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", t(r[0]), escapeCell(r[1]))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatMs(ms int) string {
	return fmt.Sprintf("%d ms", ms)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
